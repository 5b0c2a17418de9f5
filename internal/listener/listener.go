package listener

import (
	"context"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"deviseur/internal/app"
	"deviseur/internal/catalog"
	"deviseur/internal/quote"
)

// Service reloads the catalogue source on a fixed interval so a long-running
// server follows catalogue updates.
type Service struct {
	session  *app.Session
	interval time.Duration
}

func NewService(session *app.Session) *Service {
	cfg := session.Config()
	return &Service{
		session:  session,
		interval: time.Duration(cfg.CatalogueRefreshSec) * time.Second,
	}
}

// Run blocks until ctx is done. It returns immediately when no interval is
// configured.
func (s *Service) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(s.interval):
		}

		if err := s.runCycle(ctx); err != nil {
			log.WithError(err).Warn("catalogue refresh failed, keeping current catalogue")
		}
	}
}

// runCycle loads the source and swaps the session catalogue only on success.
func (s *Service) runCycle(ctx context.Context) error {
	result, err := s.session.Loader().Load(ctx, "")
	if err != nil {
		return err
	}
	s.session.UseIndex(result.Index, result.Logo)

	cfg := s.session.Config()
	if cfg.CatalogueRefreshPages {
		if err := s.writePages(result.Index); err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{"source": result.Source, "products": result.Index.Len()}).Info("catalogue refreshed")
	return nil
}

func (s *Service) writePages(idx *catalog.Index) error {
	cfg := s.session.Config()
	dir := filepath.Join(cfg.OutputDir, "pages")
	written, err := catalog.WritePages(dir, idx.Products, cfg.PlaceholderImage, quote.FormatCurrency)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"dir": dir, "pages": len(written)}).Info("product pages written")
	return nil
}
