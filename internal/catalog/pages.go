package catalog

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"deviseur/internal"
	"deviseur/internal/util"
)

var productPage = template.Must(template.New("product").Parse(`<!DOCTYPE html>
<html lang="fr">
  <head>
    <meta charset="utf-8" />
    <title>{{.Name}} – Fiche produit</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <header>
      <nav class="breadcrumbs">
        <a href="index.html">← Retour à l'index des fiches</a>
      </nav>
      <h1>{{.Name}}</h1>
      <p class="meta"><strong>Référence :</strong> {{.Reference}}</p>
      {{- if .Details}}
      <p class="meta">{{.Details}}</p>
      {{- end}}
    </header>
    <main>
      <section class="price"><h2>Prix HT</h2><p>{{.Price}}</p></section>
      {{- if .Link}}
      <section><h2>Lien</h2><p><a href="{{.Link}}" target="_blank" rel="noopener noreferrer">{{.Link}}</a></p></section>
      {{- end}}
      <section class="product-image"><h2>Image</h2><img src="{{.Image}}" alt="{{.Name}}" /></section>
    </main>
    <footer>
      <p>© Deviseur – Catalogue produits</p>
    </footer>
  </body>
</html>
`))

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="fr">
  <head>
    <meta charset="utf-8" />
    <title>Index des fiches produits</title>
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <header>
      <h1>Fiches produits</h1>
      <p>Consultez les fiches individuelles générées à partir du catalogue.</p>
    </header>
    <main>
      <ul class="product-list">
      {{- range .}}
        <li><a href="{{.File}}">{{.Name}}</a></li>
      {{- end}}
      </ul>
    </main>
    <footer>
      <p>© Deviseur – Catalogue produits</p>
    </footer>
  </body>
</html>
`))

type pageData struct {
	File      string
	Name      string
	Reference string
	Details   string
	Price     string
	Link      string
	Image     string
}

// WritePages renders one HTML page per product plus index.html into dir and
// returns the product page file names in catalogue order. formatPrice
// renders the listed price.
func WritePages(dir string, products []internal.Product, placeholder string, formatPrice func(float64) string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	used := map[string]struct{}{"index": {}}
	pages := make([]pageData, 0, len(products))
	for _, p := range products {
		base := util.PageSlug(p.Reference)
		if base == "produit" {
			base = util.PageSlug(p.Name)
		}
		name := base
		for n := 2; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = struct{}{}

		image := p.Image
		if image == "" {
			image = placeholder
		}
		pages = append(pages, pageData{
			File:      name + ".html",
			Name:      p.Name,
			Reference: p.Reference,
			Details:   "Catégorie : " + util.FormatCategoryLabel(p.Category) + " · Unité : " + util.FormatUnitLabel(p.Unit),
			Price:     formatPrice(p.Price),
			Link:      p.Link,
			Image:     image,
		})
	}

	files := make([]string, 0, len(pages))
	for _, page := range pages {
		if err := renderTo(filepath.Join(dir, page.File), productPage, page); err != nil {
			return nil, err
		}
		files = append(files, page.File)
	}
	if err := renderTo(filepath.Join(dir, "index.html"), indexPage, pages); err != nil {
		return nil, err
	}
	return files, nil
}

func renderTo(path string, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
