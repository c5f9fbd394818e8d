// Package email renders the embedded HTML templates and sends them through
// Resend.
package email

import (
	"bytes"

	"github.com/panjilaras/Dashboard-PI/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type Client struct {
	client *resend.Client
	from   string
	logger *zerolog.Logger
}

// NewClient returns a Resend client. Without an API key emails are rendered
// and logged but not sent, which keeps local development offline.
func NewClient(cfg config.IntegrationConfig, logger *zerolog.Logger) *Client {
	c := &Client{from: cfg.EmailFrom, logger: logger}
	if cfg.ResendAPIKey != "" {
		c.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return c
}

// Render executes the named template with data.
func Render(name Template, data map[string]string) (string, error) {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(name)+".html", data); err != nil {
		return "", errors.Wrapf(err, "failed to execute email template %s", name)
	}
	return body.String(), nil
}

func (c *Client) SendEmail(to, subject string, name Template, data map[string]string) error {
	html, err := Render(name, data)
	if err != nil {
		return err
	}

	if c.client == nil {
		c.logger.Warn().
			Str("to", to).
			Str("template", string(name)).
			Msg("resend api key not configured, email not sent")
		return nil
	}

	_, err = c.client.Emails.Send(&resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return errors.Wrap(err, "failed to send email")
	}

	return nil
}
