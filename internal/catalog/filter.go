package catalog

import (
	"strings"

	"deviseur/internal"
	"deviseur/internal/util"
)

type Filter struct {
	Search     string
	Categories map[string]struct{}
	// Unit is a unit label or one of the UnitFilterAll / UnitFilterNone
	// sentinels. Empty means all.
	Unit string
}

func NewFilter(search string, categories []string, unit string) Filter {
	f := Filter{Search: search, Unit: unit}
	if len(categories) > 0 {
		f.Categories = make(map[string]struct{}, len(categories))
		for _, c := range categories {
			f.Categories[c] = struct{}{}
		}
	}
	return f
}

// Apply returns the matching products in catalogue order.
func Apply(idx *Index, f Filter) []internal.Product {
	if idx == nil {
		return nil
	}
	out := make([]internal.Product, 0, len(idx.Products))
	for _, p := range idx.Products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f Filter) Matches(p internal.Product) bool {
	return f.matchesSearch(p) && f.matchesCategory(p) && f.matchesUnit(p)
}

func (f Filter) matchesSearch(p internal.Product) bool {
	query := strings.TrimSpace(f.Search)
	if query == "" {
		return true
	}
	return util.ContainsFold(p.Name+" "+p.Reference, query)
}

func (f Filter) matchesCategory(p internal.Product) bool {
	if len(f.Categories) == 0 {
		return true
	}
	if p.Category == "" {
		return false
	}
	_, ok := f.Categories[p.Category]
	return ok
}

func (f Filter) matchesUnit(p internal.Product) bool {
	switch f.Unit {
	case "", internal.UnitFilterAll:
		return true
	case internal.UnitFilterNone:
		return p.Unit == ""
	default:
		return p.Unit == f.Unit
	}
}
