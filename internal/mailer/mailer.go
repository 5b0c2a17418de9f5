package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"

	"deviseur/internal/config"
	"deviseur/internal/document"
	"deviseur/internal/quote"
)

// DraftSink stores a ready-to-send message somewhere the user can review it.
type DraftSink interface {
	SaveDraft(ctx context.Context, raw []byte) (string, error)
}

type Recipient struct {
	Name    string
	Address string
}

// BuildQuoteEmail renders the quote e-mail with the PDF attached.
func BuildQuoteEmail(cfg config.Config, q document.Quote, pdf []byte, to Recipient) ([]byte, error) {
	if err := cfg.Require("MAIL_FROM_ADDRESS", cfg.MailFromAddress); err != nil {
		return nil, err
	}
	if strings.TrimSpace(to.Address) == "" {
		return nil, fmt.Errorf("missing recipient address")
	}

	part, err := enmime.Builder().
		From(cfg.MailFromName, cfg.MailFromAddress).
		To(to.Name, to.Address).
		Subject(fmt.Sprintf("Votre devis %s - %s", q.Number, q.Company.Name)).
		Date(q.IssuedAt).
		Text([]byte(emailBody(q, to))).
		AddAttachment(pdf, "application/pdf", q.FileName("pdf")).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build quote email: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode quote email: %w", err)
	}
	return buf.Bytes(), nil
}

func emailBody(q document.Quote, to Recipient) string {
	var b strings.Builder
	greeting := "Bonjour,"
	if name := strings.TrimSpace(to.Name); name != "" {
		greeting = "Bonjour " + name + ","
	}
	b.WriteString(greeting + "\n\n")
	fmt.Fprintf(&b, "Veuillez trouver ci-joint notre devis %s du %s, valable jusqu'au %s.\n\n",
		q.Number, document.FormatDate(q.IssuedAt), document.FormatDate(q.ValidUntil))
	fmt.Fprintf(&b, "Total HT : %s\n", quote.FormatCurrency(q.Totals.Net))
	fmt.Fprintf(&b, "TVA (%s) : %s\n", quote.FormatPercent(q.Totals.VATRate*100), quote.FormatCurrency(q.Totals.VAT))
	fmt.Fprintf(&b, "Total TTC : %s\n\n", quote.FormatCurrency(q.Totals.Total))
	if q.GeneralComment != "" {
		b.WriteString(q.GeneralComment + "\n\n")
	}
	b.WriteString("Cordialement,\n")
	b.WriteString(q.Company.Name + "\n")
	return b.String()
}
