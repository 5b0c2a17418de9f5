package listener

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deviseur/internal/app"
	"deviseur/internal/config"
)

func newService(t *testing.T, refreshSec int) (*Service, *app.Session, config.Config) {
	t.Helper()
	dir := t.TempDir()
	source := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(source, []byte("ref;design;prix;unite\nA1;Dalle;12,50;3\nB2;Chaise;40;1\n"), 0o644))

	cfg := config.Config{
		CatalogueSource:       source,
		CatalogueDelimiter:    ";",
		FetchTimeoutMs:        1000,
		OutputDir:             filepath.Join(dir, "out"),
		CatalogueRefreshSec:   refreshSec,
		CatalogueRefreshPages: true,
	}
	session := app.NewSession(nil, cfg)
	return NewService(session), session, cfg
}

func TestRunCycleSwapsCatalogueAndWritesPages(t *testing.T) {
	svc, session, cfg := newService(t, 60)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Equal(t, 2, session.Catalogue().Len())
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "pages", "index.html"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "pages", "a1.html"))
}

func TestRunCycleFailureKeepsCatalogue(t *testing.T) {
	svc, session, cfg := newService(t, 60)
	require.NoError(t, svc.runCycle(context.Background()))

	require.NoError(t, os.Remove(cfg.CatalogueSource))
	assert.Error(t, svc.runCycle(context.Background()))
	assert.Equal(t, 2, session.Catalogue().Len())
}

func TestRunDisabled(t *testing.T) {
	svc, session, _ := newService(t, 0)
	require.NoError(t, svc.Run(context.Background()))
	assert.Nil(t, session.Catalogue())
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, _, _ := newService(t, 3600)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
