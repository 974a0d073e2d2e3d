package smtp

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jhillyerd/enmime"

	"certmail/internal"
	"certmail/internal/config"
)

type Connector struct {
	sender enmime.Sender
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("SMTP_HOST", cfg.SMTPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("SMTP_USER", cfg.SMTPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("SMTP_PASSWORD", cfg.SMTPPassword); err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort)
	auth := smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	return &Connector{sender: enmime.NewSMTP(addr, auth)}, nil
}

func (c *Connector) Send(ctx context.Context, msg internal.OutgoingMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.sender.Send(msg.From, []string{msg.To}, msg.Raw)
}
