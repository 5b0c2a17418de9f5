package gmail

import (
	"context"
	"encoding/base64"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"deviseur/internal/config"
)

// Sink creates Gmail drafts.
type Sink struct {
	service *gmail.Service
}

func NewSink(ctx context.Context, cfg config.Config) (*Sink, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailComposeScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}
	return &Sink{service: svc}, nil
}

// NewSinkWithService wraps an already configured Gmail service.
func NewSinkWithService(svc *gmail.Service) *Sink {
	return &Sink{service: svc}
}

func (s *Sink) SaveDraft(ctx context.Context, raw []byte) (string, error) {
	draft := &gmail.Draft{
		Message: &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)},
	}
	created, err := s.service.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return "gmail:" + created.Id, nil
}
