package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/common/logger"
)

// SMTPEmailSender delivers email through a plain SMTP server. Used when
// notifications.email.provider is "smtp" instead of SES.
type SMTPEmailSender struct {
	host      string
	port      int
	username  string
	password  string
	useTLS    bool
	fromEmail string
	fromName  string
	logger    logger.Logger
}

func NewSMTPEmailSender(cfg *config.Config, log logger.Logger) *SMTPEmailSender {
	s := &SMTPEmailSender{
		fromEmail: cfg.Notifications.Email.FromEmail,
		fromName:  cfg.Notifications.Email.FromName,
		logger:    log.With(map[string]interface{}{"channel": string(ChannelEmail)}),
	}
	if cfg.Notifications.Email.Enabled {
		s.host = cfg.Notifications.SMTP.Host
		s.port = cfg.Notifications.SMTP.Port
		s.username = cfg.Notifications.SMTP.Username
		s.password = cfg.Notifications.SMTP.Password
		s.useTLS = cfg.Notifications.SMTP.UseTLS
	}
	return s
}

func (s *SMTPEmailSender) Send(ctx context.Context, to, subject, body string) (*SendResult, error) {
	if s.host == "" {
		return nil, errors.NewChannelNotConfiguredError(string(ChannelEmail))
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewChannelSendFailedError(string(ChannelEmail), err)
	}

	message := s.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" && s.password != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	var err error
	if s.useTLS {
		err = s.sendWithTLS(addr, auth, to, []byte(message))
	} else {
		err = smtp.SendMail(addr, auth, s.fromEmail, []string{to}, []byte(message))
	}
	if err != nil {
		s.logger.Error("email send failed", map[string]interface{}{
			"error": err,
			"to":    to,
		})
		return nil, errors.NewChannelSendFailedError(string(ChannelEmail), err)
	}

	return &SendResult{
		ProviderID: fmt.Sprintf("<%s@%s>", uuid.New().String(), s.host),
		SentAt:     time.Now().UTC(),
	}, nil
}

func (s *SMTPEmailSender) buildMessage(to, subject, body string) string {
	var b strings.Builder

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return b.String()
}

func (s *SMTPEmailSender) sendWithTLS(addr string, auth smtp.Auth, to string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.fromEmail); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize message: %w", err)
	}

	return client.Quit()
}
