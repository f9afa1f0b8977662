package assistant

import (
	"context"
	"strings"

	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
)

// fakeCatalog is an in-memory Catalog that counts calls and can fail on demand.
type fakeCatalog struct {
	products  []catalog.Product
	inventory map[uint64]*catalog.Inventory
	offers    map[uint64]*catalog.SpecialOffer

	searchErr error
	byIDErr   error
	countErr  error

	searches   int
	counts     int
	lastFilter catalog.Filter
}

func (f *fakeCatalog) Search(ctx context.Context, filter catalog.Filter) ([]catalog.Product, error) {
	f.searches++
	f.lastFilter = filter
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []catalog.Product
	for _, p := range f.products {
		if matches(p, filter) {
			out = append(out, p)
		}
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func matches(p catalog.Product, filter catalog.Filter) bool {
	for _, term := range filter.Terms {
		term = strings.ToLower(term)
		for _, col := range filter.Columns {
			var v string
			switch col {
			case catalog.ColumnName:
				v = p.Name
			case catalog.ColumnCategory:
				v = p.Category
			case catalog.ColumnFeatures:
				v = p.Features
			}
			if term != "" && strings.Contains(strings.ToLower(v), term) {
				return true
			}
		}
	}
	return false
}

func (f *fakeCatalog) ProductsByID(ctx context.Context, ids []uint64) ([]catalog.Product, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	var out []catalog.Product
	for _, p := range f.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) InventoryFor(ctx context.Context, productID uint64) (*catalog.Inventory, error) {
	return f.inventory[productID], nil
}

func (f *fakeCatalog) ActiveOfferFor(ctx context.Context, productID uint64) (*catalog.SpecialOffer, error) {
	return f.offers[productID], nil
}

func (f *fakeCatalog) DistinctCategories(ctx context.Context) ([]string, error) {
	f.counts++
	if f.countErr != nil {
		return nil, f.countErr
	}
	seen := map[string]bool{}
	var out []string
	for _, p := range f.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}

func (f *fakeCatalog) CountByCategory(ctx context.Context, category string) (int64, error) {
	f.counts++
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, p := range f.products {
		if strings.EqualFold(p.Category, category) {
			n++
		}
	}
	return n, nil
}

func (f *fakeCatalog) CountProducts(ctx context.Context) (int64, error) {
	f.counts++
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.products)), nil
}

func noFallback() []catalog.Product { return nil }

func storeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []catalog.Product{
			{ID: 1, Name: "Classic Gold Ring", Category: "Rings", Price: 210, Materials: "14k gold", Description: "A polished comfort-fit band.", Features: "gold"},
			{ID: 2, Name: "Silver Cuff Bracelet", Category: "Bracelets", Price: 89, Materials: "sterling silver", Features: "silver"},
			{ID: 3, Name: "Moissanite Tennis Necklace", Category: "Necklaces", Price: 449, Features: "silver moissanite"},
			{ID: 4, Name: "Pearl Strand Necklace", Category: "Necklaces", Price: 260, Features: "pearl"},
			{ID: 5, Name: "Ruby Stud Earrings", Category: "Earrings", Price: 120, Features: "gold ruby"},
		},
		inventory: map[uint64]*catalog.Inventory{
			1: {ProductID: 1, Quantity: 4, Price: 199},
			2: {ProductID: 2, Quantity: 0},
			3: {ProductID: 3, Quantity: 2},
		},
		offers: map[uint64]*catalog.SpecialOffer{
			3: {ProductID: 3, Description: "Free engraving this month", IsActive: true},
		},
	}
}
