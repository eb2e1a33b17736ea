package mailer

import (
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

var ErrNoRecipients = errors.New("no recipients specified")

// Config holds SMTP configuration for sending emails.
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// Validate checks that every SMTP setting is present.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}

// Dialer delivers composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer represents an email sender.
type Mailer struct {
	from   string
	dialer Dialer
}

// Email represents an email message.
type Email struct {
	To       []string
	Cc       []string
	Subject  string
	Body     string
	HTMLBody string
}

// NewMailer creates a Mailer that delivers through the SMTP server described by cfg.
func NewMailer(cfg Config) (*Mailer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	return NewMailerWithDialer(cfg.From, dialer), nil
}

// NewMailerWithDialer creates a Mailer on top of an existing Dialer.
func NewMailerWithDialer(from string, dialer Dialer) *Mailer {
	return &Mailer{from: from, dialer: dialer}
}

// Send sends a single email.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}

	return m.dialer.DialAndSend(m.newMessage(email))
}

func (m *Mailer) newMessage(email Email) *gomail.Message {
	msg := gomail.NewMessage()

	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)

	if len(email.Cc) > 0 {
		msg.SetHeader("Cc", email.Cc...)
	}

	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}

	return msg
}
