package catalog

import (
	"strings"

	"deviseur/internal"
	"deviseur/internal/util"
)

type Index struct {
	Products []internal.Product
	ByID     map[string]internal.Product
}

// CategoryNode is one level of the catalogue tree.
type CategoryNode struct {
	Segment  string             `json:"segment"`
	Label    string             `json:"label"`
	Products []internal.Product `json:"products"`
	Children []*CategoryNode    `json:"children"`
}

func BuildIndex(products []internal.Product) *Index {
	idx := &Index{
		Products: products,
		ByID:     make(map[string]internal.Product, len(products)),
	}
	for _, p := range products {
		idx.ByID[p.ID] = p
	}
	return idx
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Products)
}

func (idx *Index) Lookup(id string) (internal.Product, bool) {
	if idx == nil {
		return internal.Product{}, false
	}
	p, ok := idx.ByID[id]
	return p, ok
}

// Categories returns the distinct non-empty categories in French order.
func (idx *Index) Categories() []string {
	if idx == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range idx.Products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	util.SortStrings(out)
	return out
}

// Units returns the distinct unit labels, the empty label included, ordered
// by their display label.
func (idx *Index) Units() []string {
	if idx == nil {
		return nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, p := range idx.Products {
		if _, ok := seen[p.Unit]; ok {
			continue
		}
		seen[p.Unit] = struct{}{}
		out = append(out, p.Unit)
	}
	util.SortByLabel(out, util.FormatUnitLabel)
	return out
}

// CategoryTree groups products by category path. Products hang off the node
// of their last path segment.
func (idx *Index) CategoryTree() []*CategoryNode {
	if idx == nil {
		return nil
	}
	root := &CategoryNode{}
	for _, p := range idx.Products {
		path := p.CategoryPath
		if len(path) == 0 {
			path = util.SplitCategoryPath(p.Category)
		}
		node := root
		for _, segment := range path {
			node = node.child(segment)
		}
		node.Products = append(node.Products, p)
	}
	root.sort()
	return root.Children
}

func (n *CategoryNode) child(segment string) *CategoryNode {
	key := strings.ToLower(segment)
	for _, c := range n.Children {
		if strings.ToLower(c.Segment) == key {
			return c
		}
	}
	c := &CategoryNode{Segment: segment, Label: util.FormatCategoryLabel(segment)}
	n.Children = append(n.Children, c)
	return c
}

func (n *CategoryNode) sort() {
	util.SortByLabel(n.Children, func(c *CategoryNode) string { return c.Label })
	util.SortByLabel(n.Products, func(p internal.Product) string { return p.Name })
	for _, c := range n.Children {
		c.sort()
	}
}

// Count is the number of products under the node, descendants included.
func (n *CategoryNode) Count() int {
	total := len(n.Products)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}
