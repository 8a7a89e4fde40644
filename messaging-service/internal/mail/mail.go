// mail отправляет письма сервиса: SMTP через go-mail или логирующая заглушка,
// если SMTP не настроен.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"github.com/pribylovaa/go-food-delivery/messaging-service/internal/config"
	"github.com/pribylovaa/go-food-delivery/pkg/redact"
)

// ErrInvalidMail - письмо без получателя или темы.
var ErrInvalidMail = errors.New("invalid mail")

// Mail - текстовое письмо одному получателю.
type Mail struct {
	To      string
	Subject string
	Text    string
}

func (m Mail) validate() error {
	if m.To == "" || m.Subject == "" {
		return ErrInvalidMail
	}

	return nil
}

// Mailer отправляет письма.
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// SMTP - Mailer поверх go-mail. Соединение открывается на каждое письмо.
type SMTP struct {
	client *gomail.Client
	from   string
}

// NewSMTP собирает SMTP-клиент из конфигурации.
func NewSMTP(cfg config.SMTPConfig) (*SMTP, error) {
	const op = "mail/NewSMTP"

	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(tlsPolicy(cfg.TLS)),
	}

	if cfg.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(cfg.Timeout))
	}

	if cfg.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	}

	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &SMTP{client: client, from: cfg.From}, nil
}

func tlsPolicy(mode string) gomail.TLSPolicy {
	switch mode {
	case config.TLSMandatory:
		return gomail.TLSMandatory
	case config.TLSNone:
		return gomail.NoTLS
	default:
		return gomail.TLSOpportunistic
	}
}

// Send формирует сообщение и отправляет его.
func (s *SMTP) Send(ctx context.Context, m Mail) error {
	const op = "mail/SMTP.Send"

	if err := m.validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("%s: from: %w", op, err)
	}

	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("%s: to: %w", op, err)
	}

	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Text)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LogMailer только пишет в лог факт отправки. Используется без SMTP.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer создаёт заглушку.
func NewLogMailer(log *slog.Logger) *LogMailer {
	if log == nil {
		log = slog.Default()
	}

	return &LogMailer{log: log}
}

// Send не отправляет письмо. Текст не логируется: в нём может быть код.
func (l *LogMailer) Send(ctx context.Context, m Mail) error {
	if err := m.validate(); err != nil {
		return fmt.Errorf("mail/LogMailer.Send: %w", err)
	}

	l.log.InfoContext(ctx, "mail_skipped_no_smtp",
		slog.String("to", redact.Email(m.To)),
		slog.String("subject", m.Subject),
	)

	return nil
}
