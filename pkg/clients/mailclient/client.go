package mailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// EmailInterval spaces consecutive sends
const EmailInterval = 3 * time.Second

// sender is the part of *mail.Client the mail client uses
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Client sends plain-text mail through an SMTP server
type Client struct {
	smtp   sender
	from   string
	logger *zap.Logger

	sendMutex    sync.Mutex
	lastSendTime time.Time
}

// Options locate and authenticate against the SMTP server
type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewClient creates an SMTP client. Authentication is only enabled when a
// username is given.
func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	mailOpts := []mail.Option{
		mail.WithPort(opts.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	if opts.Username != "" {
		mailOpts = append(mailOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}

	smtp, err := mail.NewClient(opts.Host, mailOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return newClient(smtp, opts.From, logger), nil
}

func newClient(smtp sender, from string, logger *zap.Logger) *Client {
	return &Client{smtp: smtp, from: from, logger: logger}
}

// SendEmail sends a plain-text email. Sends are throttled to one per EmailInterval.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	// Check if we need to wait before sending
	if !c.lastSendTime.IsZero() {
		if elapsed := time.Since(c.lastSendTime); elapsed < EmailInterval {
			select {
			case <-time.After(EmailInterval - elapsed):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", c.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := c.smtp.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()
	return nil
}
