package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"certmail/internal"
	"certmail/internal/config"
)

// Connector appends sent messages to a mailbox. SMTP relays do not keep a
// copy in the Sent folder, Gmail's API does.
type Connector struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	folder   string
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	return &Connector{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		folder:   cfg.IMAPSentFolder,
	}, nil
}

func (c *Connector) Archive(ctx context.Context, msg internal.OutgoingMail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	var client *imapclient.Client
	var err error
	if c.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: c.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return err
	}
	defer client.Logout()

	if err := client.Login(c.user, c.password); err != nil {
		return err
	}

	flags := []string{imap.SeenFlag}
	if err := client.Append(c.folder, flags, time.Now(), bytes.NewBuffer(msg.Raw)); err != nil {
		return fmt.Errorf("append to %s: %w", c.folder, err)
	}
	return nil
}
