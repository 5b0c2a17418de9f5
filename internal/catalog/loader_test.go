package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deviseur/internal"
	"deviseur/internal/config"
	"deviseur/internal/storage"
)

const sampleCSV = "ref;design;prix;unite;ecotaxe\nA1;Dalle;12,50;3;0,10\nB2;Chaise;40;1;\n;Sans ref;1;;\n"

func testLoader(t *testing.T, withDB bool) (*Loader, *storage.DB) {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.LogoURL = ""

	var db *storage.DB
	if withDB {
		db, err = storage.Open(filepath.Join(t.TempDir(), "app.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
	}
	return NewLoader(db, cfg), db
}

func TestLoadLocalFileAndCache(t *testing.T) {
	loader, db := testLoader(t, true)
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	result, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, internal.FormatCSV, result.Format)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 2, result.Index.Len())
	assert.Nil(t, result.Logo)

	count, err := db.GetMetadata("catalog.last_load.count")
	require.NoError(t, err)
	require.NotNil(t, count)
	assert.Equal(t, "2", *count)

	cached, err := loader.LoadCached()
	require.NoError(t, err)
	assert.Equal(t, result.Index.Products, cached.Products)
}

func TestLoadFailureKeepsCache(t *testing.T) {
	loader, _ := testLoader(t, true)
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	_, err := loader.Load(context.Background(), path)
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, MsgLoadFailed, FeedbackMessage(0, err))

	cached, err := loader.LoadCached()
	require.NoError(t, err)
	assert.Equal(t, 2, cached.Len())
}

func TestLoadEmptyCatalogue(t *testing.T) {
	loader, _ := testLoader(t, false)
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("ref;design\n;\n"), 0o644))

	result, err := loader.Load(context.Background(), path)
	require.ErrorIs(t, err, ErrEmptyCatalogue)
	assert.Nil(t, result.Index)
	assert.Equal(t, MsgEmpty, FeedbackMessage(0, err))

	_, err = loader.LoadCached()
	assert.ErrorIs(t, err, ErrEmptyCatalogue)
}

func TestLoadOverHTTPWithLogo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/export.csv":
			_, _ = w.Write([]byte(sampleCSV))
		case "/logo.png":
			_, _ = w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader, _ := testLoader(t, false)
	loader.cfg.LogoURL = srv.URL + "/logo.png"

	result, err := loader.Load(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Index.Len())
	assert.Equal(t, []byte("png-bytes"), result.Logo)
}

func TestLoadLogoFailureIsIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/export.csv" {
			_, _ = w.Write([]byte(sampleCSV))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader, _ := testLoader(t, false)
	loader.cfg.LogoURL = srv.URL + "/logo.png"

	result, err := loader.Load(context.Background(), srv.URL+"/export.csv")
	require.NoError(t, err)
	assert.Nil(t, result.Logo)
}

func TestLoadHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	loader, _ := testLoader(t, false)
	_, err := loader.Load(context.Background(), srv.URL+"/export.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=404")
}

func TestLoadedMessage(t *testing.T) {
	assert.Equal(t, "1 produit chargé.", LoadedMessage(1))
	assert.Equal(t, "12 produits chargés.", FeedbackMessage(12, nil))
}
