package imap

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"

	"deviseur/internal/config"
)

// Sink appends drafts to an IMAP mailbox.
type Sink struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	mailbox  string
}

func NewSink(cfg config.Config) (*Sink, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}

	mailbox := cfg.IMAPDraftsFolder
	if mailbox == "" {
		mailbox = "Drafts"
	}
	return &Sink{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		mailbox:  mailbox,
	}, nil
}

func (s *Sink) dial() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if s.secure {
		return imapclient.DialTLS(addr, &tls.Config{ServerName: s.host})
	}
	return imapclient.Dial(addr)
}

// SaveDraft appends raw to the drafts mailbox flagged as \Draft.
func (s *Sink) SaveDraft(ctx context.Context, raw []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client, err := s.dial()
	if err != nil {
		return "", err
	}
	defer client.Logout()

	if err := client.Login(s.user, s.password); err != nil {
		return "", err
	}

	flags := []string{imap.DraftFlag, imap.SeenFlag}
	if err := client.Append(s.mailbox, flags, time.Now(), bytes.NewBuffer(raw)); err != nil {
		return "", fmt.Errorf("append to %s: %w", s.mailbox, err)
	}
	return "imap:" + s.mailbox, nil
}
