package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"deviseur/internal"
	"deviseur/internal/config"
	"deviseur/internal/storage"
)

var ErrEmptyCatalogue = errors.New("catalogue is empty")

// Messages shown to the user around a catalogue load.
const (
	MsgLoading    = "Chargement du catalogue en cours..."
	MsgLoadFailed = "Une erreur est survenue lors du chargement du catalogue. Vérifiez le fichier CSV et réessayez."
	MsgEmpty      = "Aucun produit exploitable n'a été trouvé dans le catalogue."
)

func LoadedMessage(count int) string {
	if count == 1 {
		return "1 produit chargé."
	}
	return fmt.Sprintf("%d produits chargés.", count)
}

// FeedbackMessage maps a load outcome to the message shown to the user.
func FeedbackMessage(count int, err error) string {
	switch {
	case errors.Is(err, ErrEmptyCatalogue):
		return MsgEmpty
	case err != nil:
		return MsgLoadFailed
	default:
		return LoadedMessage(count)
	}
}

type LoadResult struct {
	Index  *Index
	Logo   []byte
	Source string
	Format internal.CatalogueFormat
	Rows   int
}

type Loader struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

// NewLoader builds a loader. db may be nil, in which case nothing is cached.
func NewLoader(db *storage.DB, cfg config.Config) *Loader {
	return &Loader{db: db, client: NewClient(cfg), cfg: cfg}
}

// Load reads the catalogue at source (a file path or an http(s) URL) and
// the configured logo concurrently. A logo failure is only logged. On any
// catalogue failure no index is returned and the cache is left untouched.
func (l *Loader) Load(ctx context.Context, source string) (LoadResult, error) {
	if strings.TrimSpace(source) == "" {
		source = l.cfg.CatalogueSource
	}
	result := LoadResult{Source: source, Format: DetectFormat(source)}

	var content []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := l.read(gctx, source)
		if err != nil {
			return fmt.Errorf("read catalogue %s: %w", source, err)
		}
		content = body
		return nil
	})
	g.Go(func() error {
		result.Logo = l.FetchLogo(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return LoadResult{}, err
	}

	records, err := Decode(result.Format, content, l.cfg.Delimiter())
	if err != nil {
		return LoadResult{}, fmt.Errorf("decode catalogue %s: %w", source, err)
	}
	result.Rows = len(records)

	products := Products(records)
	if len(products) == 0 {
		return LoadResult{}, ErrEmptyCatalogue
	}
	result.Index = BuildIndex(products)

	if l.db != nil {
		if err := l.db.ReplaceProducts(products); err != nil {
			return LoadResult{}, fmt.Errorf("cache catalogue: %w", err)
		}
		_ = l.db.SetMetadata("catalog.last_load.source", source)
		_ = l.db.SetMetadata("catalog.last_load.at", time.Now().UTC().Format(time.RFC3339))
		_ = l.db.SetMetadata("catalog.last_load.count", strconv.Itoa(len(products)))
	}

	log.WithFields(log.Fields{
		"source":   source,
		"format":   result.Format,
		"rows":     result.Rows,
		"products": len(products),
	}).Info("catalogue loaded")

	return result, nil
}

// LoadCached rebuilds the index from the last cached load.
func (l *Loader) LoadCached() (*Index, error) {
	if l.db == nil {
		return nil, ErrEmptyCatalogue
	}
	products, err := l.db.ListProducts()
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrEmptyCatalogue
	}
	return BuildIndex(products), nil
}

// FetchLogo returns the configured logo bytes, or nil when there is none or
// it cannot be read.
func (l *Loader) FetchLogo(ctx context.Context) []byte {
	if strings.TrimSpace(l.cfg.LogoURL) == "" {
		return nil
	}
	body, err := l.read(ctx, l.cfg.LogoURL)
	if err != nil {
		log.WithError(err).WithField("logo", l.cfg.LogoURL).Warn("logo unavailable")
		return nil
	}
	return body
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return l.client.Fetch(ctx, source)
	}
	return os.ReadFile(source)
}
