// Package mailer provides outbound email for YojanaHub. Its single consumer
// today is the password-reset flow. SMTP settings come from environment
// configuration; when unset, delivery is disabled and IsConfigured reports
// false so callers can degrade gracefully.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	gosmtp "net/smtp"
	"strings"
	"time"

	"github.com/yojanahub/yojanahub/internal/config"
)

// MailSender is the interface other packages use to send email.
type MailSender interface {
	SendMail(ctx context.Context, to []string, subject, body string) error
	IsConfigured(ctx context.Context) bool
}

// smtpSender implements MailSender over plain SMTP with optional TLS.
type smtpSender struct {
	cfg config.MailConfig
}

// New creates a MailSender from the given SMTP configuration.
func New(cfg config.MailConfig) MailSender {
	return &smtpSender{cfg: cfg}
}

// IsConfigured returns true if SMTP delivery is set up.
func (s *smtpSender) IsConfigured(_ context.Context) bool {
	return s.cfg.Enabled()
}

// SendMail sends a plain-text email using the configured SMTP settings.
func (s *smtpSender) SendMail(_ context.Context, to []string, subject, body string) error {
	if !s.cfg.Enabled() {
		return fmt.Errorf("smtp is not configured")
	}

	from := mail.Address{Name: s.cfg.FromName, Address: s.cfg.FromAddress}

	// Build RFC 2822 message.
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from.String()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	// Send based on encryption mode.
	switch s.cfg.Encryption {
	case "ssl":
		return s.sendSSL(addr, from.Address, to, msg.String())
	case "none":
		return s.sendPlain(addr, from.Address, to, msg.String())
	default: // "starttls"
		return s.sendStartTLS(addr, from.Address, to, msg.String())
	}
}

// sendStartTLS sends email using STARTTLS (port 587 typical).
func (s *smtpSender) sendStartTLS(addr, from string, to []string, msg string) error {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	tlsConfig := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starting TLS: %w", err)
	}

	if err := s.auth(client); err != nil {
		return err
	}

	return s.sendMessage(client, from, to, msg)
}

// sendSSL sends email using implicit SSL/TLS (port 465 typical).
func (s *smtpSender) sendSSL(addr, from string, to []string, msg string) error {
	tlsConfig := &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}, "tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("connecting to %s (SSL): %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := s.auth(client); err != nil {
		return err
	}

	return s.sendMessage(client, from, to, msg)
}

// sendPlain sends email without encryption (port 25, internal relays only).
func (s *smtpSender) sendPlain(addr, from string, to []string, msg string) error {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := gosmtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	defer client.Close()

	if err := s.auth(client); err != nil {
		return err
	}

	return s.sendMessage(client, from, to, msg)
}

// auth authenticates when a username is configured.
func (s *smtpSender) auth(client *gosmtp.Client) error {
	if s.cfg.Username == "" {
		return nil
	}
	auth := gosmtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	return nil
}

// sendMessage performs the MAIL FROM / RCPT TO / DATA exchange.
func (s *smtpSender) sendMessage(client *gosmtp.Client, from string, to []string, msg string) error {
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, recipient := range to {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("RCPT TO %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	return client.Quit()
}
