package email

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/ptuchik/billing/internal/shared/config"
	"github.com/ptuchik/billing/internal/shared/logger"
)

var ErrEmailServiceNotConfigured = errors.New("email service is not configured")

// Message is one outgoing email with a plain and an HTML part.
type Message struct {
	To        string
	Subject   string
	PlainBody string
	HTMLBody  string
}

// Sender delivers messages.
type Sender interface {
	Send(msg Message) error
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

type SMTPEmailService struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPEmailService(config SMTPConfig) *SMTPEmailService {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	return &SMTPEmailService{
		config: config,
		dialer: dialer,
	}
}

func (s *SMTPEmailService) Send(msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email recipient is required")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.PlainBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// logOnlySender stands in when email is disabled.
type logOnlySender struct {
	logger logger.Interface
}

func (s *logOnlySender) Send(msg Message) error {
	s.logger.Debugw("email disabled, message dropped", "to", msg.To, "subject", msg.Subject)
	return nil
}

// NewSender returns an SMTP sender, or one that only logs when email is off.
func NewSender(cfg config.EmailConfig, log logger.Interface) Sender {
	if !cfg.Enabled {
		return &logOnlySender{logger: log}
	}
	return NewSMTPEmailService(SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
	})
}
