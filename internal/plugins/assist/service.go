package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/yojanahub/yojanahub/internal/config"
	"github.com/yojanahub/yojanahub/internal/plugins/schemes"
)

// historyLimit is how many prior conversation turns go to the completion
// endpoint. Older turns are dropped from the front.
const historyLimit = 6

const greetingAnswer = "Hello! I can help you discover Indian government welfare " +
	"schemes. Ask me about schemes for farmers, students, women, health, or " +
	"housing, or mention your state to see what is available there."

const noMatchAnswer = "I couldn't find any schemes matching your criteria. " +
	"Try asking about specific categories like \"agriculture\", \"health\", " +
	"or \"education\" schemes."

const degradedAnswer = "I'm having trouble processing your request right now. " +
	"Please try using the search filters to look for schemes, or check back later."

const systemPrompt = "You are a knowledgeable and friendly assistant for Indian " +
	"government welfare schemes. Answer using only the scheme records provided. " +
	"Explain eligibility, benefits, required documents, and how to apply in " +
	"plain conversational language. If the records do not cover the question, " +
	"say so and suggest browsing by category or state."

// ChatTurn is one prior message in the conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the POST /api/chat payload.
type ChatRequest struct {
	Message  string     `json:"message"`
	Language string     `json:"language"`
	History  []ChatTurn `json:"history"`
}

// ChatResponse is the assistant's answer plus the scheme records it drew on.
type ChatResponse struct {
	Answer     string           `json:"answer"`
	Schemes    []schemes.Scheme `json:"schemes"`
	IsRelevant bool             `json:"isRelevant"`
}

// TranslateRequest is the POST /api/translate payload.
type TranslateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang"`
}

// AssistService answers scheme questions and proxies translations. Both are
// best-effort: degradation produces a default answer or the original text,
// never a server error.
type AssistService interface {
	Chat(ctx context.Context, req ChatRequest) *ChatResponse
	Translate(ctx context.Context, text, targetLang string) string
}

type assistService struct {
	catalog   schemes.SchemeService
	llm       *completionClient
	translate *translator
}

// NewAssistService creates the assistant. Without a completion API key the
// assistant runs on keyword matching alone.
func NewAssistService(catalog schemes.SchemeService, cfg config.AssistConfig, cache *redis.Client) AssistService {
	var llm *completionClient
	if cfg.CompletionAPIKey != "" {
		llm = newCompletionClient(cfg.CompletionAPIKey, cfg.CompletionBaseURL,
			cfg.CompletionModel, cfg.CompletionTimeout)
	} else {
		slog.Info("completion API key not set, assistant runs in keyword mode")
	}
	return &assistService{
		catalog:   catalog,
		llm:       llm,
		translate: newTranslator(cfg.TranslateBaseURL, cfg.TranslateTimeout, cache),
	}
}

// Chat answers a scheme question. It never returns an error: every failure
// path degrades to a canned answer.
func (s *assistService) Chat(ctx context.Context, req ChatRequest) *ChatResponse {
	message := strings.TrimSpace(req.Message)

	if isGreeting(message) {
		return &ChatResponse{Answer: greetingAnswer, Schemes: []schemes.Scheme{}, IsRelevant: true}
	}

	matched, err := s.catalog.List(ctx, matchFilter(message))
	if err != nil {
		slog.Warn("assistant catalog query failed", slog.Any("error", err))
		return &ChatResponse{Answer: degradedAnswer, Schemes: []schemes.Scheme{}, IsRelevant: true}
	}
	if matched == nil {
		matched = []schemes.Scheme{}
	}

	if s.llm != nil {
		if answer, err := s.completeAnswer(ctx, message, req.History, matched); err == nil {
			return &ChatResponse{Answer: answer, Schemes: matched, IsRelevant: true}
		} else {
			slog.Warn("completion call failed, using keyword answer", slog.Any("error", err))
		}
	}

	return &ChatResponse{Answer: keywordAnswer(matched), Schemes: matched, IsRelevant: true}
}

// Translate converts text to the target language, best-effort.
func (s *assistService) Translate(ctx context.Context, text, targetLang string) string {
	return s.translate.Translate(ctx, text, targetLang)
}

// completeAnswer builds the conversation for the completion endpoint: the
// system prompt, the matched scheme records, the last turns of history, and
// the user's message.
func (s *assistService) completeAnswer(ctx context.Context, message string, history []ChatTurn, matched []schemes.Scheme) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: systemPrompt + "\n\nScheme records:\n" + schemeContext(matched)},
	}

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, turn := range history {
		role := turn.Role
		if role != "assistant" {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: message})

	return s.llm.Complete(ctx, messages)
}

// schemeContext renders scheme records as plain text for the prompt.
func schemeContext(matched []schemes.Scheme) string {
	if len(matched) == 0 {
		return "(no matching schemes found)"
	}
	var b strings.Builder
	for i := range matched {
		sc := &matched[i]
		fmt.Fprintf(&b, "Scheme: %s\nCategory: %s\nState: %s\nDescription: %s\n",
			sc.SchemeName, sc.Category, sc.State, sc.Description)
		if sc.Eligibility != "" {
			fmt.Fprintf(&b, "Eligibility: %s\n", sc.Eligibility)
		}
		if sc.Benefits != "" {
			fmt.Fprintf(&b, "Benefits: %s\n", sc.Benefits)
		}
		if len(sc.DocumentsRequired) > 0 {
			fmt.Fprintf(&b, "Documents: %s\n", strings.Join(sc.DocumentsRequired, ", "))
		}
		if sc.ApplyLink != "" {
			fmt.Fprintf(&b, "Apply: %s\n", sc.ApplyLink)
		}
		b.WriteString("---\n")
	}
	return b.String()
}

// keywordAnswer is the canned reply when no completion endpoint is in play.
func keywordAnswer(matched []schemes.Scheme) string {
	if len(matched) == 0 {
		return noMatchAnswer
	}
	plural := ""
	if len(matched) > 1 {
		plural = "s"
	}
	return fmt.Sprintf("I found %d government scheme%s matching your query. Here are the details:",
		len(matched), plural)
}
