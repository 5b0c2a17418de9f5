package mailer

import (
	"context"

	log "github.com/sirupsen/logrus"

	"deviseur/internal/config"
	"deviseur/internal/document"
)

type DraftService struct {
	cfg  config.Config
	sink DraftSink
}

type DraftResult struct {
	ID    string
	Bytes int
}

func NewDraftService(cfg config.Config, sink DraftSink) *DraftService {
	return &DraftService{cfg: cfg, sink: sink}
}

// Prepare builds the quote e-mail and hands it to the sink.
func (s *DraftService) Prepare(ctx context.Context, q document.Quote, pdf []byte, to Recipient) (DraftResult, error) {
	raw, err := BuildQuoteEmail(s.cfg, q, pdf, to)
	if err != nil {
		return DraftResult{}, err
	}
	id, err := s.sink.SaveDraft(ctx, raw)
	if err != nil {
		return DraftResult{}, err
	}
	log.WithFields(log.Fields{"quote": q.Number, "draft": id, "to": to.Address}).Info("quote draft saved")
	return DraftResult{ID: id, Bytes: len(raw)}, nil
}
