package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"deviseur/internal/app"
	"deviseur/internal/catalog"
	"deviseur/internal/config"
	"deviseur/internal/document"
	"deviseur/internal/listener"
	"deviseur/internal/mailer"
	gmailsink "deviseur/internal/mailer/gmail"
	imapsink "deviseur/internal/mailer/imap"
	"deviseur/internal/quote"
	"deviseur/internal/storage"
	"deviseur/internal/util"
	"deviseur/internal/web"
)

func main() {
	cfg, err := config.Load()
	must(err)
	setupLogging(cfg)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	ctx := context.Background()
	cmd := os.Args[1]
	switch cmd {
	case "catalog:load":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		source := fs.String("source", "", "catalogue path or http(s) URL (default CATALOGUE_SOURCE)")
		_ = fs.Parse(os.Args[2:])
		fmt.Println(catalog.MsgLoading)
		result, err := catalog.NewLoader(db, cfg).Load(ctx, *source)
		if err != nil {
			fmt.Println(catalog.FeedbackMessage(0, err))
			must(err)
		}
		fmt.Println(catalog.LoadedMessage(result.Index.Len()))
		fmt.Printf("catalog load done source=%s format=%s rows=%d products=%d\n", result.Source, result.Format, result.Rows, result.Index.Len())
	case "catalog:search":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		query := fs.String("q", "", "search in name and reference")
		var categories []string
		fs.Func("category", "category filter, repeatable", func(v string) error {
			categories = append(categories, v)
			return nil
		})
		unit := fs.String("unit", "", "unit label, __all__ or __none__")
		_ = fs.Parse(os.Args[2:])
		session := openSession(ctx, db, cfg)
		products := session.Products(catalog.NewFilter(*query, categories, *unit))
		for _, p := range products {
			fmt.Printf("%-16s %-48s %12s  %s\n", p.Reference, p.Name, quote.FormatCurrency(p.Price), util.FormatUnitLabel(p.Unit))
		}
		fmt.Printf("catalog search done matches=%d\n", len(products))
	case "catalog:tree":
		session := openSession(ctx, db, cfg)
		for _, node := range session.Catalogue().CategoryTree() {
			printNode(node, 0)
		}
	case "catalog:pages":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", filepath.Join(cfg.OutputDir, "pages"), "output directory")
		_ = fs.Parse(os.Args[2:])
		session := openSession(ctx, db, cfg)
		files, err := catalog.WritePages(*out, session.Catalogue().Products, cfg.PlaceholderImage, quote.FormatCurrency)
		must(err)
		fmt.Printf("catalog pages done pages=%d out=%s\n", len(files), *out)
	case "quote:price":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		snapshot := fs.String("snapshot", "", "cart snapshot JSON")
		discount := fs.String("discount", "", "override the snapshot discount, e.g. 12,5")
		_ = fs.Parse(os.Args[2:])
		session := sessionWithSnapshot(ctx, db, cfg, *snapshot)
		if strings.TrimSpace(*discount) != "" {
			session.SetDiscount(*discount)
		}
		printView(session.View())
	case "quote:pdf", "quote:xlsx":
		ext := strings.TrimPrefix(cmd, "quote:")
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		snapshot := fs.String("snapshot", "", "cart snapshot JSON")
		out := fs.String("out", "", "output file (default OUTPUT_DIR/devis-<number>."+ext+")")
		_ = fs.Parse(os.Args[2:])
		session := sessionWithSnapshot(ctx, db, cfg, *snapshot)
		q := buildDocument(session)
		path := *out
		if strings.TrimSpace(path) == "" {
			path = filepath.Join(cfg.OutputDir, q.FileName(ext))
		}
		if ext == "pdf" {
			must(document.WritePDF(q, path))
		} else {
			must(document.WriteXLSX(q, path))
		}
		fmt.Printf("quote export done number=%s lines=%d out=%s\n", q.Number, len(q.Lines), path)
	case "quote:inspect":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "quote PDF to read back")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		content, err := os.ReadFile(*file)
		must(err)
		lines, err := document.PlainText(content)
		must(err)
		for _, line := range lines {
			fmt.Println(line)
		}
	case "quote:draft":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		snapshot := fs.String("snapshot", "", "cart snapshot JSON")
		provider := fs.String("provider", "file", "imap|gmail|file")
		to := fs.String("to", "", "recipient address")
		name := fs.String("name", "", "recipient name")
		_ = fs.Parse(os.Args[2:])
		session := sessionWithSnapshot(ctx, db, cfg, *snapshot)
		q := buildDocument(session)
		pdf, err := document.RenderPDF(q)
		must(err)
		sink, err := makeSink(ctx, cfg, *provider)
		must(err)
		result, err := mailer.NewDraftService(cfg, sink).Prepare(ctx, q, pdf, mailer.Recipient{Name: *name, Address: *to})
		must(err)
		fmt.Printf("quote draft done provider=%s number=%s draft=%s bytes=%d\n", *provider, q.Number, result.ID, result.Bytes)
	case "quote:save":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		snapshot := fs.String("snapshot", "", "cart snapshot JSON")
		label := fs.String("label", "", "label shown in quote:list")
		_ = fs.Parse(os.Args[2:])
		session := sessionWithSnapshot(ctx, db, cfg, *snapshot)
		saved, err := session.SaveQuote(*label)
		must(err)
		fmt.Printf("quote save done id=%s label=%q\n", saved.ID, saved.Label)
	case "quote:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 20, "max saved quotes")
		_ = fs.Parse(os.Args[2:])
		rows, err := db.ListSnapshots(*limit)
		must(err)
		for _, row := range rows {
			fmt.Printf("%s  %s  %s\n", row.ID, row.CreatedAt, row.Label)
		}
	case "quote:open":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "saved quote id")
		out := fs.String("out", "", "write the snapshot JSON here")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*id) == "" {
			must(fmt.Errorf("--id is required"))
		}
		session := openSession(ctx, db, cfg)
		result, err := session.OpenQuote(*id)
		must(err)
		reportSkipped(result)
		if strings.TrimSpace(*out) != "" {
			payload, err := session.ExportSnapshot()
			must(err)
			must(os.WriteFile(*out, payload, 0o644))
		}
		printView(session.View())
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", cfg.HTTPAddr, "listen address")
		_ = fs.Parse(os.Args[2:])
		must(serve(db, cfg, *addr))
	default:
		usage()
		os.Exit(1)
	}
}

func setupLogging(cfg config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// openSession loads the cached catalogue, or the configured source when the
// cache is empty.
func openSession(ctx context.Context, db *storage.DB, cfg config.Config) *app.Session {
	session := app.NewSession(db, cfg)
	_, err := session.UseCached(ctx)
	if err == nil {
		return session
	}
	if !errors.Is(err, catalog.ErrEmptyCatalogue) {
		must(err)
	}
	if _, err := session.LoadCatalogue(ctx, ""); err != nil {
		fmt.Println(catalog.FeedbackMessage(0, err))
		must(err)
	}
	return session
}

func sessionWithSnapshot(ctx context.Context, db *storage.DB, cfg config.Config, path string) *app.Session {
	if strings.TrimSpace(path) == "" {
		must(fmt.Errorf("--snapshot is required"))
	}
	payload, err := os.ReadFile(path)
	must(err)
	session := openSession(ctx, db, cfg)
	result, err := session.ImportSnapshot(payload)
	must(err)
	reportSkipped(result)
	return session
}

func buildDocument(session *app.Session) document.Quote {
	q, err := session.Document()
	if errors.Is(err, document.ErrEmptyQuote) {
		fmt.Println(document.MsgEmptyQuote)
	}
	must(err)
	return q
}

func reportSkipped(result quote.ImportResult) {
	if len(result.Skipped) > 0 {
		fmt.Printf("skipped %d unknown products: %s\n", len(result.Skipped), strings.Join(result.Skipped, ", "))
	}
}

func makeSink(ctx context.Context, cfg config.Config, provider string) (mailer.DraftSink, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailsink.NewSink(ctx, cfg)
	case "imap":
		return imapsink.NewSink(cfg)
	case "file":
		return mailer.NewFileSink(filepath.Join(cfg.OutputDir, "drafts")), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func printNode(node *catalog.CategoryNode, depth int) {
	fmt.Printf("%s%s (%d)\n", strings.Repeat("  ", depth), node.Label, node.Count())
	for _, p := range node.Products {
		fmt.Printf("%s- %s %s\n", strings.Repeat("  ", depth+1), p.Reference, p.Name)
	}
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}

func printView(v app.View) {
	for _, line := range v.Lines {
		fmt.Printf("%-16s %-40s %12s %12s %12s\n",
			line.Reference, line.Name, line.QuantityLabel,
			quote.FormatCurrency(line.Figures.DiscountedUnitPrice),
			quote.FormatCurrency(line.Figures.TotalWithEcotax))
	}
	t := v.Totals
	fmt.Printf("Total HT (hors éco-part) : %s\n", quote.FormatCurrency(t.BaseAfterDiscount()))
	fmt.Printf("Remise commerciale (%s) : %s\n", quote.FormatPercent(t.DiscountRate), quote.FormatCurrency(t.DiscountAmount))
	fmt.Printf("Éco-participation HT : %s\n", quote.FormatCurrency(t.EcotaxTotal))
	fmt.Printf("Total HT : %s\n", quote.FormatCurrency(t.Net))
	fmt.Printf("TVA (%s) : %s\n", quote.FormatPercent(t.VATRate*100), quote.FormatCurrency(t.VAT))
	fmt.Printf("Total TTC : %s\n", quote.FormatCurrency(t.Total))
}

// serve runs the API and the catalogue refresher until SIGINT or SIGTERM.
func serve(db *storage.DB, cfg config.Config, addr string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session := app.NewSession(db, cfg)
	if _, err := session.UseCached(ctx); err != nil {
		if _, err := session.LoadCatalogue(ctx, ""); err != nil {
			log.WithError(err).Warn(catalog.FeedbackMessage(0, err))
		}
	}

	go func() {
		if err := listener.NewService(session).Run(ctx); err != nil {
			log.WithError(err).Error("catalogue refresher stopped")
		}
	}()

	server := web.NewServer(session)
	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return server.Shutdown(shutdownCtx)
}

func usage() {
	fmt.Println("usage: deviseur <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:load [--source=path|url]")
	fmt.Println("  catalog:search [--q=...] [--category=...] [--unit=...|__all__|__none__]")
	fmt.Println("  catalog:tree")
	fmt.Println("  catalog:pages [--out=./out/pages]")
	fmt.Println("  quote:price --snapshot=devis.json [--discount=10]")
	fmt.Println("  quote:pdf --snapshot=devis.json [--out=...pdf]")
	fmt.Println("  quote:xlsx --snapshot=devis.json [--out=...xlsx]")
	fmt.Println("  quote:inspect --file=devis.pdf")
	fmt.Println("  quote:draft --snapshot=devis.json --to=client@example.com [--name=...] --provider=imap|gmail|file")
	fmt.Println("  quote:save --snapshot=devis.json [--label=...]")
	fmt.Println("  quote:list [--limit=20]")
	fmt.Println("  quote:open --id=... [--out=devis.json]")
	fmt.Println("  serve [--addr=127.0.0.1:8080]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
