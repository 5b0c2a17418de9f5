package quote

import (
	"math"

	"deviseur/internal"
	"deviseur/internal/util"
)

// Cart holds one line per product id, in the order products were added.
type Cart struct {
	lines []internal.LineItem
}

func NewCart() *Cart {
	return &Cart{}
}

func (c *Cart) find(id string) int {
	for i := range c.lines {
		if c.lines[i].ID == id {
			return i
		}
	}
	return -1
}

// Add puts a product in the cart. A unit line already present gains one;
// an area line already present is left alone.
func (c *Cart) Add(p internal.Product) internal.LineItem {
	if i := c.find(p.ID); i >= 0 {
		line := &c.lines[i]
		if line.QuantityMode == internal.QuantityUnit {
			line.Quantity++
		}
		return *line
	}

	line := internal.LineItem{Product: p, Quantity: 1}
	if p.QuantityMode == internal.QuantityArea {
		line.Length = 1
		line.Width = 1
	}
	c.lines = append(c.lines, line)
	return line
}

// ChangeQuantity moves a unit line by delta, never below 1. It reports
// whether a unit line with that id exists.
func (c *Cart) ChangeQuantity(id string, delta int) bool {
	i := c.find(id)
	if i < 0 || c.lines[i].QuantityMode != internal.QuantityUnit {
		return false
	}
	c.lines[i].Quantity = math.Max(1, c.lines[i].Quantity+float64(delta))
	return true
}

// SetQuantity sets a unit line to qty rounded to a whole number, never
// below 1. It reports whether a unit line with that id exists.
func (c *Cart) SetQuantity(id string, qty float64) bool {
	i := c.find(id)
	if i < 0 || c.lines[i].QuantityMode != internal.QuantityUnit {
		return false
	}
	c.lines[i].Quantity = math.Max(1, math.Round(util.NonNegative(qty)))
	return true
}

// SetDimensions parses user-entered dimensions and recomputes the area
// quantity.
func (c *Cart) SetDimensions(id, length, width string) bool {
	return c.SetDimensionValues(id, util.ParseFrenchNumber(length), util.ParseFrenchNumber(width))
}

func (c *Cart) SetDimensionValues(id string, length, width float64) bool {
	i := c.find(id)
	if i < 0 || c.lines[i].QuantityMode != internal.QuantityArea {
		return false
	}
	line := &c.lines[i]
	line.Length = util.NonNegative(length)
	line.Width = util.NonNegative(width)
	line.Quantity = line.Length * line.Width
	return true
}

func (c *Cart) SetComment(id, comment string) bool {
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.lines[i].Comment = comment
	return true
}

func (c *Cart) SetExpanded(id string, expanded bool) bool {
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.lines[i].Expanded = expanded
	return true
}

// Toggle flips the display state of a line.
func (c *Cart) Toggle(id string) bool {
	i := c.find(id)
	if i < 0 {
		return false
	}
	c.lines[i].Expanded = !c.lines[i].Expanded
	return true
}

func (c *Cart) Remove(id string) {
	if i := c.find(id); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the cart lines.
func (c *Cart) Lines() []internal.LineItem {
	out := make([]internal.LineItem, len(c.lines))
	copy(out, c.lines)
	for i := range out {
		out[i].CategoryPath = append([]string(nil), out[i].CategoryPath...)
	}
	return out
}

func (c *Cart) Line(id string) (internal.LineItem, bool) {
	i := c.find(id)
	if i < 0 {
		return internal.LineItem{}, false
	}
	line := c.lines[i]
	line.CategoryPath = append([]string(nil), line.CategoryPath...)
	return line, true
}

func (c *Cart) Len() int {
	return len(c.lines)
}
