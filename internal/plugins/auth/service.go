package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yojanahub/yojanahub/internal/apperror"
	"github.com/yojanahub/yojanahub/internal/mailer"
)

// resetTokenBytes is the number of random bytes in a reset secret.
// 32 bytes = 256 bits of entropy, hex-encoded to 64 characters.
const resetTokenBytes = 32

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, string, error)
	Login(ctx context.Context, input LoginInput) (*User, string, error)
	GetUser(ctx context.Context, id string) (*User, error)
	VerifySession(token string) (userID string, ok bool)
	SessionTTL() time.Duration

	// InitiatePasswordReset stores a hashed reset secret for the account and
	// mails the raw secret out-of-band. The raw secret is also returned so
	// the handler can expose it in development mode. For unknown emails it
	// returns ("", nil): the caller's response must not differ.
	InitiatePasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error

	SaveScheme(ctx context.Context, userID, schemeID string) ([]string, error)
	UnsaveScheme(ctx context.Context, userID, schemeID string) ([]string, error)
	SavedSchemeIDs(ctx context.Context, userID string) ([]string, error)
}

// authService implements AuthService with argon2id hashing and signed
// stateless session tokens.
type authService struct {
	repo     UserRepository
	tokens   *TokenService
	mail     mailer.MailSender
	baseURL  string
	resetTTL time.Duration
	now      func() time.Time
}

// NewAuthService creates a new auth service with the given dependencies.
// mail may be nil; the reset flow then stores tokens without sending email.
func NewAuthService(repo UserRepository, tokens *TokenService, mail mailer.MailSender, baseURL string, resetTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		mail:     mail,
		baseURL:  baseURL,
		resetTTL: resetTTL,
		now:      time.Now,
	}
}

// Register creates a new user account. It checks uniqueness, hashes the
// password with argon2id, persists the user, and issues a session token.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, string, error) {
	email := normalizeEmail(input.Email)

	// Check if the email is already taken before doing expensive hashing.
	// The unique index still backs this up against concurrent registrations.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, "", storeError(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, "", apperror.NewConflict("an account with this email already exists")
	}

	// Hash the password with argon2id (memory-hard, GPU-resistant).
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, "", appErr
		}
		return nil, "", storeError(fmt.Errorf("creating user: %w", err))
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, token, nil
}

// Login authenticates a user by email and password. The response for an
// unknown email and for a wrong password is byte-identical: same error kind,
// same generic message. Nothing here may leak which half was wrong.
func (s *authService) Login(ctx context.Context, input LoginInput) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return nil, "", apperror.NewUnauthorized("invalid email or password")
		}
		return nil, "", storeError(fmt.Errorf("finding user: %w", err))
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return nil, "", apperror.NewUnauthorized("invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("issuing session token: %w", err))
	}

	// Update the user's last login timestamp (fire-and-forget, non-critical).
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, token, nil
}

// GetUser loads an account by id. Used by the who-am-i flow after the
// session token has been verified; NotFound here means the account was
// deleted after the token was issued.
func (s *authService) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, storeError(fmt.Errorf("finding user by id: %w", err))
	}
	return user, nil
}

// VerifySession checks a session token and returns the bound user id.
func (s *authService) VerifySession(token string) (string, bool) {
	return s.tokens.Verify(token)
}

// SessionTTL returns the session token lifetime, for the cookie MaxAge.
func (s *authService) SessionTTL() time.Duration {
	return s.tokens.TTL()
}

// --- Password Reset ---

// InitiatePasswordReset generates a reset secret for the account, stores
// only its SHA-256 hash plus an expiry, and mails the raw secret. Any
// previous pending reset is overwritten in the same atomic update. Unknown
// emails return ("", nil) so the handler response never reveals whether the
// account exists, and no token is created.
func (s *authService) InitiatePasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return "", nil
		}
		return "", storeError(fmt.Errorf("finding user: %w", err))
	}

	secret, err := generateResetSecret()
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("generating reset secret: %w", err))
	}

	expiresAt := s.now().UTC().Add(s.resetTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, hashToken(secret), expiresAt); err != nil {
		return "", storeError(fmt.Errorf("storing reset token: %w", err))
	}

	// The raw secret is never logged. Only its presence is.
	slog.Info("password reset initiated",
		slog.String("user_id", user.ID),
		slog.Time("expires_at", expiresAt),
	)

	s.sendResetMail(ctx, user, secret)

	return secret, nil
}

// sendResetMail delivers the reset link. Delivery failure does not fail the
// flow: the token is already stored and the generic response must not change.
func (s *authService) sendResetMail(ctx context.Context, user *User, secret string) {
	if s.mail == nil || !s.mail.IsConfigured(ctx) {
		slog.Warn("mail delivery unconfigured; reset secret not sent",
			slog.String("user_id", user.ID),
		)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s",
		strings.TrimRight(s.baseURL, "/"), url.QueryEscape(secret))

	body := fmt.Sprintf(
		"Hello %s,\n\n"+
			"A password reset was requested for your YojanaHub account.\n"+
			"Open the link below to choose a new password. The link is valid for %s.\n\n"+
			"%s\n\n"+
			"If you did not request this, you can ignore this mail.\n",
		user.Name, s.resetTTL, resetURL)

	if err := s.mail.SendMail(ctx, []string{user.Email}, "Reset your YojanaHub password", body); err != nil {
		slog.Error("sending reset mail failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

// ResetPassword consumes a reset secret and replaces the account password.
// An unknown hash yields invalid_token; a known but stale one token_expired.
// Consumption is a single update that swaps the password hash and clears the
// token pair, so the same secret can never succeed twice.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.repo.FindByResetTokenHash(ctx, hashToken(strings.TrimSpace(token)))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return apperror.NewInvalidToken("invalid reset token, please request a new password reset")
		}
		return storeError(fmt.Errorf("finding reset token: %w", err))
	}

	if user.ResetTokenExpiresAt == nil || s.now().After(*user.ResetTokenExpiresAt) {
		return apperror.NewTokenExpired("reset token has expired, please request a new password reset")
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	if err := s.repo.UpdatePasswordAndClearReset(ctx, user.ID, hash); err != nil {
		return storeError(fmt.Errorf("updating password: %w", err))
	}

	slog.Info("password reset completed",
		slog.String("user_id", user.ID),
	)

	return nil
}

// --- Saved Schemes ---

// SaveScheme bookmarks a scheme for the user and returns the updated set.
func (s *authService) SaveScheme(ctx context.Context, userID, schemeID string) ([]string, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.repo.SaveScheme(ctx, userID, schemeID); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, storeError(err)
	}
	return s.SavedSchemeIDs(ctx, userID)
}

// UnsaveScheme removes a bookmark and returns the updated set.
func (s *authService) UnsaveScheme(ctx context.Context, userID, schemeID string) ([]string, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.repo.UnsaveScheme(ctx, userID, schemeID); err != nil {
		return nil, storeError(err)
	}
	return s.SavedSchemeIDs(ctx, userID)
}

// SavedSchemeIDs returns the user's bookmarked scheme ids.
func (s *authService) SavedSchemeIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.ListSavedSchemeIDs(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// --- Helpers ---

// normalizeEmail lowercases and trims an email for use as the login key.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateResetSecret creates a cryptographically random hex-encoded secret.
func generateResetSecret() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken returns the hex SHA-256 of a reset secret. Only this hash is
// ever persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// storeError maps storage failures to the client-safe taxonomy: timeouts
// become 503, everything else a generic 500. The cause stays server-side.
func storeError(err error) *apperror.AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.NewServiceUnavailable(err)
	}
	return apperror.NewInternal(err)
}
