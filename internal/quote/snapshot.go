package quote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"deviseur/internal"
	"deviseur/internal/util"
)

const SnapshotVersion = 1

type Snapshot struct {
	Version        int            `json:"version"`
	GeneratedAt    string         `json:"generatedAt"`
	DiscountRate   Number         `json:"discountRate"`
	GeneralComment string         `json:"generalComment"`
	Items          []SnapshotItem `json:"items"`
}

type SnapshotItem struct {
	ID           string                `json:"id"`
	QuantityMode internal.QuantityMode `json:"quantityMode"`
	Quantity     Number                `json:"quantity"`
	Length       *Number               `json:"length"`
	Width        *Number               `json:"width"`
	Comment      string                `json:"comment"`
}

// Number accepts a JSON number, a French-formatted string or null.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Number(util.ParseFrenchNumber(s))
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number(util.Finite(v))
	return nil
}

func (n *Number) value(fallback float64) float64 {
	if n == nil {
		return fallback
	}
	return float64(*n)
}

// Export serialises the cart, the discount and the general comment.
func Export(cart *Cart, discountRate float64, generalComment string, now time.Time) ([]byte, error) {
	snap := Snapshot{
		Version:        SnapshotVersion,
		GeneratedAt:    now.UTC().Format(time.RFC3339),
		DiscountRate:   Number(ClampDiscount(discountRate)),
		GeneralComment: generalComment,
		Items:          make([]SnapshotItem, 0, cart.Len()),
	}
	for _, line := range cart.Lines() {
		item := SnapshotItem{
			ID:           line.ID,
			QuantityMode: line.QuantityMode,
			Quantity:     Number(line.Quantity),
			Comment:      line.Comment,
		}
		if line.QuantityMode == internal.QuantityArea {
			length, width := Number(line.Length), Number(line.Width)
			item.Length, item.Width = &length, &width
		}
		snap.Items = append(snap.Items, item)
	}
	return json.MarshalIndent(snap, "", "  ")
}

type ImportResult struct {
	DiscountRate   float64
	GeneralComment string
	Restored       int
	Skipped        []string
}

// Import replaces the cart content with a snapshot. Products are resolved
// through lookup; unknown ids are skipped. The cart is only touched once the
// payload has been decoded.
func Import(data []byte, lookup func(id string) (internal.Product, bool), cart *Cart) (ImportResult, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ImportResult{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return ImportResult{}, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	result := ImportResult{
		DiscountRate:   ClampDiscount(float64(snap.DiscountRate)),
		GeneralComment: snap.GeneralComment,
	}

	cart.Clear()
	for _, item := range snap.Items {
		p, ok := lookup(item.ID)
		if !ok {
			result.Skipped = append(result.Skipped, item.ID)
			continue
		}
		if _, present := cart.Line(p.ID); present {
			cart.Remove(p.ID)
		}
		cart.Add(p)

		if p.QuantityMode == internal.QuantityArea {
			cart.SetDimensionValues(p.ID, item.Length.value(1), item.Width.value(1))
		} else {
			cart.SetQuantity(p.ID, float64(item.Quantity))
		}
		cart.SetComment(p.ID, item.Comment)
		result.Restored++
	}
	return result, nil
}
