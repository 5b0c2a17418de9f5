package internal

type QuantityMode string

const (
	QuantityUnit QuantityMode = "unit"
	QuantityArea QuantityMode = "area"
)

// Unit filter sentinels.
const (
	UnitFilterAll  = "__all__"
	UnitFilterNone = "__none__"
)

const DefaultCategory = "Divers"

type CatalogueFormat string

const (
	FormatCSV  CatalogueFormat = "csv"
	FormatXLSX CatalogueFormat = "xlsx"
	FormatHTML CatalogueFormat = "html"
)

// RawRow holds the known catalogue columns of one source row, still as text.
type RawRow struct {
	Ref       string
	Design    string
	Prix      string
	Unite     string
	Ecotaxe   string
	Poids     string
	Categorie string
	Image     string
	URL       string
	Score     string
}

type Product struct {
	ID           string       `json:"id"`
	Reference    string       `json:"reference"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	Unit         string       `json:"unit"`
	QuantityMode QuantityMode `json:"quantityMode"`
	Ecotax       float64      `json:"ecotax"`
	Weight       float64      `json:"weight"`
	Score        string       `json:"score"`
	Category     string       `json:"category"`
	CategoryPath []string     `json:"categoryPath"`
	Image        string       `json:"image"`
	Link         string       `json:"link"`
}

type LineItem struct {
	Product
	Quantity float64 `json:"quantity"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Comment  string  `json:"comment"`
	Expanded bool    `json:"expanded"`
}

type Totals struct {
	ProductsSubtotal float64 `json:"productsSubtotal"`
	DiscountAmount   float64 `json:"discountAmount"`
	EcotaxTotal      float64 `json:"ecotaxTotal"`
	Net              float64 `json:"net"`
	VAT              float64 `json:"vat"`
	Total            float64 `json:"total"`
	DiscountRate     float64 `json:"discountRate"`
	VATRate          float64 `json:"vatRate"`
}

// BaseAfterDiscount is the products subtotal net of the commercial discount,
// ecotax excluded.
func (t Totals) BaseAfterDiscount() float64 {
	return t.ProductsSubtotal - t.DiscountAmount
}

type SavedQuote struct {
	ID        string
	Label     string
	CreatedAt string
	Payload   string
}

type CompanyIdentity struct {
	Name          string
	BrandCode     string
	Address       []string
	Contacts      []string
	LegalLines    []string
	PaymentTerms  string
	DeliveryLead  string
	ToleranceNote string
}
