package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"deviseur/internal"
	"deviseur/internal/catalog"
	"deviseur/internal/config"
	"deviseur/internal/document"
	"deviseur/internal/quote"
	"deviseur/internal/storage"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrLineNotFound   = errors.New("line not in quote")
	ErrWrongMode      = errors.New("operation does not apply to this quantity mode")
	ErrNoCatalogue    = errors.New("no catalogue loaded")
)

// Session is one user's working state: the loaded catalogue, the quote cart,
// the discount and the general comment. It is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	cfg    config.Config
	db     *storage.DB
	loader *catalog.Loader

	index    *catalog.Index
	logo     []byte
	cart     *quote.Cart
	discount float64
	comment  string

	now func() time.Time
}

// NewSession builds an empty session. db may be nil.
func NewSession(db *storage.DB, cfg config.Config) *Session {
	return &Session{
		cfg:    cfg,
		db:     db,
		loader: catalog.NewLoader(db, cfg),
		cart:   quote.NewCart(),
		now:    time.Now,
	}
}

func (s *Session) Config() config.Config {
	return s.cfg
}

func (s *Session) Loader() *catalog.Loader {
	return s.loader
}

// LoadCatalogue replaces the catalogue from source. On failure the session
// is left without a catalogue.
func (s *Session) LoadCatalogue(ctx context.Context, source string) (catalog.LoadResult, error) {
	result, err := s.loader.Load(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.index = nil
		s.logo = nil
		return catalog.LoadResult{}, err
	}
	s.index = result.Index
	s.logo = result.Logo
	return result, nil
}

// UseCached loads the catalogue cached by the last successful load.
func (s *Session) UseCached(ctx context.Context) (int, error) {
	idx, err := s.loader.LoadCached()
	if err != nil {
		return 0, err
	}
	logo := s.loader.FetchLogo(ctx)
	s.UseIndex(idx, logo)
	return idx.Len(), nil
}

func (s *Session) UseIndex(idx *catalog.Index, logo []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = idx
	s.logo = logo
}

func (s *Session) Catalogue() *catalog.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index
}

func (s *Session) Products(f catalog.Filter) []internal.Product {
	return catalog.Apply(s.Catalogue(), f)
}

func (s *Session) Product(id string) (internal.Product, error) {
	p, ok := s.Catalogue().Lookup(id)
	if !ok {
		return internal.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	return p, nil
}

func (s *Session) AddProduct(id string) (internal.LineItem, error) {
	p, err := s.Product(id)
	if err != nil {
		return internal.LineItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Add(p), nil
}

func (s *Session) line(id string) (internal.LineItem, error) {
	line, ok := s.cart.Line(id)
	if !ok {
		return internal.LineItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	return line, nil
}

func (s *Session) ChangeQuantity(id string, delta int) (internal.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, err := s.line(id)
	if err != nil {
		return line, err
	}
	if !s.cart.ChangeQuantity(id, delta) {
		return line, fmt.Errorf("%w: %s is measured in m²", ErrWrongMode, id)
	}
	line, _ = s.cart.Line(id)
	return line, nil
}

func (s *Session) SetDimensions(id, length, width string) (internal.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line, err := s.line(id)
	if err != nil {
		return line, err
	}
	if !s.cart.SetDimensions(id, length, width) {
		return line, fmt.Errorf("%w: %s is counted per unit", ErrWrongMode, id)
	}
	line, _ = s.cart.Line(id)
	return line, nil
}

func (s *Session) SetComment(id, comment string) (internal.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cart.SetComment(id, comment) {
		return internal.LineItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	line, _ := s.cart.Line(id)
	return line, nil
}

func (s *Session) Toggle(id string) (internal.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cart.Toggle(id) {
		return internal.LineItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, id)
	}
	line, _ := s.cart.Line(id)
	return line, nil
}

func (s *Session) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(id)
}

// Reset empties the cart and forgets the discount and the general comment.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	s.discount = 0
	s.comment = ""
}

// SetDiscount parses a user-entered percentage and returns the clamped rate.
func (s *Session) SetDiscount(raw string) float64 {
	return s.SetDiscountRate(quote.ParseDiscount(raw))
}

func (s *Session) SetDiscountRate(rate float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discount = quote.ClampDiscount(rate)
	return s.discount
}

func (s *Session) SetGeneralComment(comment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comment = comment
}

// LineView is a cart line with its computed figures and labels.
type LineView struct {
	internal.LineItem
	Figures       quote.LineFigures `json:"figures"`
	QuantityLabel string            `json:"quantityLabel"`
}

type View struct {
	Lines          []LineView      `json:"lines"`
	Totals         internal.Totals `json:"totals"`
	DiscountRate   float64         `json:"discountRate"`
	GeneralComment string          `json:"generalComment"`
}

// View recomputes every figure from the current cart.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := s.cart.Lines()
	v := View{
		Lines:          make([]LineView, 0, len(lines)),
		Totals:         quote.ComputeTotals(lines, s.discount, s.cfg.VATRate),
		DiscountRate:   s.discount,
		GeneralComment: s.comment,
	}
	for _, line := range lines {
		v.Lines = append(v.Lines, LineView{
			LineItem:      line,
			Figures:       quote.Figures(line, s.discount),
			QuantityLabel: quote.FormatQuantityLabel(line),
		})
	}
	return v
}

func (s *Session) Totals() internal.Totals {
	return s.View().Totals
}

func (s *Session) ExportSnapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quote.Export(s.cart, s.discount, s.comment, s.now())
}

// ImportSnapshot restores a snapshot against the loaded catalogue. Without a
// catalogue it fails and the cart is left as is.
func (s *Session) ImportSnapshot(data []byte) (quote.ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index.Len() == 0 {
		return quote.ImportResult{}, ErrNoCatalogue
	}

	result, err := quote.Import(data, s.index.Lookup, s.cart)
	if err != nil {
		return result, err
	}
	s.discount = result.DiscountRate
	s.comment = result.GeneralComment
	if len(result.Skipped) > 0 {
		log.WithField("skipped", strings.Join(result.Skipped, ",")).Warn("snapshot items missing from catalogue")
	}
	return result, nil
}

// Document builds the quote document for the current cart.
func (s *Session) Document() (document.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return document.Build(document.Input{
		Lines:          s.cart.Lines(),
		DiscountRate:   s.discount,
		VATRate:        s.cfg.VATRate,
		GeneralComment: s.comment,
		Logo:           s.logo,
	}, s.cfg.Company(), s.cfg.OfferValidityDays, s.now())
}

// SaveQuote stores the current snapshot under label.
func (s *Session) SaveQuote(label string) (internal.SavedQuote, error) {
	if s.db == nil {
		return internal.SavedQuote{}, errors.New("no database configured")
	}
	payload, err := s.ExportSnapshot()
	if err != nil {
		return internal.SavedQuote{}, err
	}
	if strings.TrimSpace(label) == "" {
		label = "Devis du " + document.FormatDate(s.now())
	}
	return s.db.SaveSnapshot(label, payload)
}

// OpenQuote replaces the cart with a saved quote.
func (s *Session) OpenQuote(id string) (quote.ImportResult, error) {
	if s.db == nil {
		return quote.ImportResult{}, errors.New("no database configured")
	}
	row, err := s.db.MustSnapshot(id)
	if err != nil {
		return quote.ImportResult{}, err
	}
	return s.ImportSnapshot([]byte(row.Payload))
}

func (s *Session) ListQuotes(limit int) ([]internal.SavedQuote, error) {
	if s.db == nil {
		return nil, errors.New("no database configured")
	}
	return s.db.ListSnapshots(limit)
}
