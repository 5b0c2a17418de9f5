package web

import (
	"errors"
	"net/http"

	"deviseur/internal"
	"deviseur/internal/catalog"
	"deviseur/internal/quote"
	"deviseur/internal/util"
)

type catalogueInfo struct {
	Loaded   bool   `json:"loaded"`
	Products int    `json:"products"`
	Message  string `json:"message"`
}

func (s *Server) handleCatalogue(w http.ResponseWriter, r *http.Request) {
	n := s.session.Catalogue().Len()
	info := catalogueInfo{Loaded: n > 0, Products: n, Message: catalog.MsgEmpty}
	if n > 0 {
		info.Message = catalog.LoadedMessage(n)
	}
	writeJSON(w, http.StatusOK, info)
}

type reloadRequest struct {
	Source string `json:"source"`
}

type reloadResponse struct {
	catalogueInfo
	Source string                   `json:"source"`
	Format internal.CatalogueFormat `json:"format"`
	Rows   int                      `json:"rows"`
	Logo   bool                     `json:"logo"`
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	var req reloadRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, errors.Join(errBadRequest, err))
			return
		}
	}

	result, err := s.session.LoadCatalogue(r.Context(), req.Source)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCatalogue) {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   err.Error(),
			Message: catalog.MsgLoadFailed,
			Code:    "LOAD_FAILED",
		})
		return
	}

	n := result.Index.Len()
	writeJSON(w, http.StatusOK, reloadResponse{
		catalogueInfo: catalogueInfo{Loaded: true, Products: n, Message: catalog.LoadedMessage(n)},
		Source:        result.Source,
		Format:        result.Format,
		Rows:          result.Rows,
		Logo:          len(result.Logo) > 0,
	})
}

type unitFacet struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type facets struct {
	Categories []string    `json:"categories"`
	Units      []unitFacet `json:"units"`
}

func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	idx := s.session.Catalogue()
	out := facets{Categories: idx.Categories(), Units: []unitFacet{}}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	for _, u := range idx.Units() {
		value := u
		if u == "" {
			value = internal.UnitFilterNone
		}
		out.Units = append(out.Units, unitFacet{Value: value, Label: util.FormatUnitLabel(u)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	tree := s.session.Catalogue().CategoryTree()
	if tree == nil {
		tree = []*catalog.CategoryNode{}
	}
	writeJSON(w, http.StatusOK, tree)
}

// productView is a catalogue product as listed to the user, priced with the
// current discount.
type productView struct {
	internal.Product
	UnitLabel       string  `json:"unitLabel"`
	CategoryLabel   string  `json:"categoryLabel"`
	DiscountedPrice float64 `json:"discountedPrice"`
	PriceLabel      string  `json:"priceLabel"`
	EcotaxLabel     string  `json:"ecotaxLabel"`
	ScoreBadge      string  `json:"scoreBadge"`
}

// handleProducts filters with ?q=, repeated ?category= and ?unit=.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	f := catalog.NewFilter(query.Get("q"), query["category"], query.Get("unit"))
	discount := s.session.View().DiscountRate

	products := s.session.Products(f)
	out := make([]productView, 0, len(products))
	for _, p := range products {
		discounted := quote.DiscountedUnitPrice(p.Price, discount)
		out = append(out, productView{
			Product:         p,
			UnitLabel:       util.FormatUnitLabel(p.Unit),
			CategoryLabel:   util.FormatCategoryLabel(p.Category),
			DiscountedPrice: discounted,
			PriceLabel:      quote.FormatCurrency(discounted),
			EcotaxLabel:     quote.FormatEcotaxUnit(p),
			ScoreBadge:      util.ScoreBadge(p.Score),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
