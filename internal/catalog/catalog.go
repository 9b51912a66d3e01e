// Package catalog holds the static product list of the store.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/fjod/pixelwick/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is an immutable, ordered set of products indexed by id.
type Catalog struct {
	products []domain.Product
	byID     map[int64]int
}

type file struct {
	Products []domain.Product `yaml:"products"`
}

// New validates products and builds a catalog preserving their order.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(c.products, products)

	for i, p := range c.products {
		if p.ID <= 0 {
			return nil, fmt.Errorf("%w: product %q has non-positive id %d", ErrInvalidCatalog, p.Name, p.ID)
		}
		if p.Price < 0 {
			return nil, fmt.Errorf("%w: product %d has negative price", ErrInvalidCatalog, p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %d", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Default returns the catalog shipped with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(f.Products)
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func (c *Catalog) Product(id int64) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Products returns a copy of the ordered product list.
func (c *Catalog) Products() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	return len(c.products)
}
