package catalog

import (
	"deviseur/internal"
	"deviseur/internal/util"
)

// RowFromRecord narrows an untyped record to the known catalogue columns.
func RowFromRecord(rec Record) internal.RawRow {
	return internal.RawRow{
		Ref:       rec["ref"],
		Design:    rec["design"],
		Prix:      rec["prix"],
		Unite:     rec["unite"],
		Ecotaxe:   rec["ecotaxe"],
		Poids:     rec["poids"],
		Categorie: rec["categorie"],
		Image:     rec["image"],
		URL:       rec["url"],
		Score:     rec["score"],
	}
}

// ToProduct builds a product from a raw row. Rows without a reference or a
// name are rejected; every other defect degrades to a zero value.
func ToProduct(row internal.RawRow) (internal.Product, bool) {
	reference := util.CleanValue(row.Ref)
	name := util.CleanValue(row.Design)
	if reference == "" || name == "" {
		return internal.Product{}, false
	}

	unit, mode := util.ResolveUnit(row.Unite)
	category := util.CleanValue(row.Categorie)

	return internal.Product{
		ID:           reference,
		Reference:    reference,
		Name:         name,
		Price:        util.NonNegative(util.ParseCatalogueNumber(row.Prix)),
		Unit:         unit,
		QuantityMode: mode,
		Ecotax:       util.NonNegative(util.ParseCatalogueNumber(row.Ecotaxe)),
		Weight:       util.NonNegative(util.ParseCatalogueNumber(row.Poids)),
		Score:        util.NormaliseScore(row.Score),
		Category:     category,
		CategoryPath: util.SplitCategoryPath(category),
		Image:        util.CleanValue(row.Image),
		Link:         util.CleanValue(row.URL),
	}, true
}

// Products converts records in order, silently dropping rejected rows.
func Products(records []Record) []internal.Product {
	out := make([]internal.Product, 0, len(records))
	for _, rec := range records {
		if p, ok := ToProduct(RowFromRecord(rec)); ok {
			out = append(out, p)
		}
	}
	return out
}
