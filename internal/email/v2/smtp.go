package emailv2

import (
	"context"
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/tenantprov/internal/observability/logger"
)

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	cfg                SMTPConfig
	InsecureSkipVerify bool

	dial func(*mail.Dialer, *mail.Message) error
}

// NewSMTPSender crea un SMTPSender. TLSMode vacío equivale a "auto".
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.TLSMode == "" {
		cfg.TLSMode = "auto"
	}
	return &SMTPSender{
		cfg:  cfg,
		dial: func(d *mail.Dialer, m *mail.Message) error { return d.DialAndSend(m) },
	}
}

// Send envía un email multipart (texto + html).
func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	log := logger.From(ctx).With(
		logger.Component("email.smtp"),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
	)

	m := s.message(to, subject, htmlBody, textBody)

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host, InsecureSkipVerify: s.InsecureSkipVerify}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}

	if err := s.dial(d, m); err != nil {
		diag := DiagnoseSMTP(err)
		log.Warn("smtp send failed",
			logger.String("diag", diag.Code),
			logger.Bool("temporary", diag.Temporary),
			logger.Err(err),
		)
		return fmt.Errorf("smtp send (%s): %w", diag.Code, err)
	}

	log.Debug("email sent", logger.String("subject", subject))
	return nil
}

func (s *SMTPSender) message(to, subject, htmlBody, textBody string) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", s.cfg.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	switch {
	case textBody != "" && htmlBody != "":
		m.SetBody("text/plain", textBody)
		m.AddAlternative("text/html", htmlBody)
	case htmlBody != "":
		m.SetBody("text/html", htmlBody)
	default:
		m.SetBody("text/plain", textBody)
	}
	return m
}
