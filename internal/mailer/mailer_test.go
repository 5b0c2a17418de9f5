package mailer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deviseur/internal"
	"deviseur/internal/config"
	"deviseur/internal/document"
)

func testQuote(t *testing.T) document.Quote {
	t.Helper()
	q, err := document.Build(document.Input{
		Lines: []internal.LineItem{{
			Product:  internal.Product{ID: "CHA-1", Reference: "CHA-1", Name: "Chaise", Price: 10, Ecotax: 1, QuantityMode: internal.QuantityUnit},
			Quantity: 2,
		}},
		DiscountRate:   10,
		VATRate:        0.2,
		GeneralComment: "Livraison au 2e étage",
	}, internal.CompanyIdentity{Name: "ID GROUP - MK Distribution"}, 30, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	return q
}

func testConfig() config.Config {
	return config.Config{MailFromName: "Service devis", MailFromAddress: "devis@example.test"}
}

func TestBuildQuoteEmail(t *testing.T) {
	q := testQuote(t)
	raw, err := BuildQuoteEmail(testConfig(), q, []byte("%PDF-1.3 fake"), Recipient{Name: "Claire Martin", Address: "claire@example.test"})
	require.NoError(t, err)

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "Votre devis DEV-20260301-0930 - ID GROUP - MK Distribution", env.GetHeader("Subject"))
	assert.Contains(t, env.GetHeader("To"), "claire@example.test")
	assert.Contains(t, env.Text, "Bonjour Claire Martin,")
	assert.Contains(t, env.Text, "Total TTC : 24,00 €")
	assert.Contains(t, env.Text, "Livraison au 2e étage")

	require.Len(t, env.Attachments, 1)
	assert.Equal(t, "devis-DEV-20260301-0930.pdf", env.Attachments[0].FileName)
	assert.Equal(t, "application/pdf", env.Attachments[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.3 fake"), env.Attachments[0].Content)
}

func TestBuildQuoteEmailRequiresAddresses(t *testing.T) {
	q := testQuote(t)
	_, err := BuildQuoteEmail(config.Config{}, q, nil, Recipient{Address: "claire@example.test"})
	assert.Error(t, err)

	_, err = BuildQuoteEmail(testConfig(), q, nil, Recipient{Name: "Claire"})
	assert.Error(t, err)
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "drafts")
	sink := NewFileSink(dir)

	first, err := sink.SaveDraft(context.Background(), []byte("raw message"))
	require.NoError(t, err)
	second, err := sink.SaveDraft(context.Background(), []byte("raw message"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, ".eml", filepath.Ext(first))

	body, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "raw message", string(body))
}

type sinkFunc func(ctx context.Context, raw []byte) (string, error)

func (f sinkFunc) SaveDraft(ctx context.Context, raw []byte) (string, error) {
	return f(ctx, raw)
}

func TestDraftService(t *testing.T) {
	var saved []byte
	svc := NewDraftService(testConfig(), sinkFunc(func(_ context.Context, raw []byte) (string, error) {
		saved = raw
		return "draft-1", nil
	}))

	result, err := svc.Prepare(context.Background(), testQuote(t), []byte("pdf"), Recipient{Address: "claire@example.test"})
	require.NoError(t, err)
	assert.Equal(t, "draft-1", result.ID)
	assert.Equal(t, len(saved), result.Bytes)

	failing := NewDraftService(testConfig(), sinkFunc(func(context.Context, []byte) (string, error) {
		return "", errors.New("mailbox unavailable")
	}))
	_, err = failing.Prepare(context.Background(), testQuote(t), []byte("pdf"), Recipient{Address: "claire@example.test"})
	assert.EqualError(t, err, "mailbox unavailable")
}
