package quote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deviseur/internal"
)

func lookupOf(products ...internal.Product) func(string) (internal.Product, bool) {
	byID := map[string]internal.Product{}
	for _, p := range products {
		byID[p.ID] = p
	}
	return func(id string) (internal.Product, bool) {
		p, ok := byID[id]
		return p, ok
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	cart := NewCart()
	cart.Add(chaise)
	cart.ChangeQuantity(chaise.ID, 2)
	cart.SetComment(chaise.ID, "Coloris gris")
	cart.Add(dalle)
	cart.SetDimensions(dalle.ID, "2,5", "4")

	data, err := Export(cart, 12.5, "Livraison au 2e étage", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	restored := NewCart()
	restored.Add(dalle)
	result, err := Import(data, lookupOf(chaise, dalle), restored)
	require.NoError(t, err)

	assert.Equal(t, 12.5, result.DiscountRate)
	assert.Equal(t, "Livraison au 2e étage", result.GeneralComment)
	assert.Equal(t, 2, result.Restored)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, cart.Lines(), restored.Lines())
}

func TestSnapshotWireFormat(t *testing.T) {
	cart := NewCart()
	cart.Add(chaise)
	cart.Add(dalle)

	data, err := Export(cart, 0, "", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, 1, raw["version"])
	assert.Equal(t, "2026-03-01T09:30:00Z", raw["generatedAt"])

	items := raw["items"].([]any)
	require.Len(t, items, 2)
	unitItem := items[0].(map[string]any)
	assert.Equal(t, "unit", unitItem["quantityMode"])
	assert.Nil(t, unitItem["length"])
	assert.Nil(t, unitItem["width"])
	areaItem := items[1].(map[string]any)
	assert.EqualValues(t, 1, areaItem["length"])
}

func TestImportTolerantNumbersAndUnknownIDs(t *testing.T) {
	payload := `{
  "version": 1,
  "generatedAt": "2026-03-01T09:30:00Z",
  "discountRate": "150",
  "generalComment": "",
  "items": [
    {"id": "GONE", "quantityMode": "unit", "quantity": 4, "length": null, "width": null, "comment": ""},
    {"id": "CHA-1", "quantityMode": "unit", "quantity": "3,0", "length": null, "width": null, "comment": "x"},
    {"id": "DAL-1", "quantityMode": "area", "quantity": 0, "length": "1,5", "width": 2, "comment": ""}
  ]
}`
	cart := NewCart()
	result, err := Import([]byte(payload), lookupOf(chaise, dalle), cart)
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.DiscountRate)
	assert.Equal(t, []string{"GONE"}, result.Skipped)
	require.Equal(t, 2, cart.Len())

	line, _ := cart.Line(chaise.ID)
	assert.Equal(t, 3.0, line.Quantity)
	assert.Equal(t, "x", line.Comment)
	line, _ = cart.Line(dalle.ID)
	assert.InDelta(t, 3.0, line.Quantity, 1e-9)
}

func TestImportFloorsUnitQuantity(t *testing.T) {
	payload := `{"version":1,"items":[{"id":"CHA-1","quantityMode":"unit","quantity":-2,"length":null,"width":null,"comment":""}]}`
	cart := NewCart()
	_, err := Import([]byte(payload), lookupOf(chaise), cart)
	require.NoError(t, err)

	line, ok := cart.Line(chaise.ID)
	require.True(t, ok)
	assert.Equal(t, 1.0, line.Quantity)
}

func TestImportInvalidPayloadLeavesCart(t *testing.T) {
	cart := NewCart()
	cart.Add(chaise)

	_, err := Import([]byte(`{"items": [`), lookupOf(chaise), cart)
	require.Error(t, err)
	assert.Equal(t, 1, cart.Len())
}

func TestImportKeepsLargeUnitQuantity(t *testing.T) {
	payload := `{"version":1,"items":[{"id":"CHA-1","quantityMode":"unit","quantity":1e20,"length":null,"width":null,"comment":""},` +
		`{"id":"DAL-1","quantityMode":"area","quantity":2,"length":"1,5","width":2,"comment":""}]}`
	cart := NewCart()
	_, err := Import([]byte(payload), lookupOf(chaise, dalle), cart)
	require.NoError(t, err)

	line, ok := cart.Line(chaise.ID)
	require.True(t, ok)
	assert.Equal(t, 1e20, line.Quantity)

	line, _ = cart.Line(dalle.ID)
	assert.InDelta(t, 3.0, line.Quantity, 1e-9)
}
