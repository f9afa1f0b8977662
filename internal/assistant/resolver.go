package assistant

import (
	"context"
	"strings"

	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"go.uber.org/zap"
)

// Catalog is the read side of the product store the assistant needs.
type Catalog interface {
	Search(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)
	ProductsByID(ctx context.Context, ids []uint64) ([]catalog.Product, error)
	InventoryFor(ctx context.Context, productID uint64) (*catalog.Inventory, error)
	ActiveOfferFor(ctx context.Context, productID uint64) (*catalog.SpecialOffer, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	CountByCategory(ctx context.Context, category string) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
}

// ResolvedProduct is a catalog product joined with stock and offer data.
// Intent and Entities record what produced the match, for logging only.
type ResolvedProduct struct {
	catalog.Product
	Quantity     int                   `json:"quantity"`
	InStock      bool                  `json:"in_stock"`
	SpecialOffer *catalog.SpecialOffer `json:"special_offer"`
	Intent       Intent                `json:"intent"`
	Entities     Entities              `json:"entities"`
}

// Keywords that survive the static fallback tokenizer.
var fallbackKeywords = map[string]bool{
	"necklace": true,
	"ring":     true,
	"bracelet": true,
	"earring":  true,
	"pendant":  true,
	"chain":    true,
}

type Resolver struct {
	catalog  Catalog
	fallback func() []catalog.Product
	limit    int
	log      *zap.Logger
}

func NewResolver(c Catalog, fallback func() []catalog.Product, limit int, log *zap.Logger) *Resolver {
	if fallback == nil {
		fallback = catalog.StaticProducts
	}
	if limit <= 0 {
		limit = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{catalog: c, fallback: fallback, limit: limit, log: log}
}

// Resolve finds catalog products for a classified query. A failing catalog
// degrades to the static list; it never fails the request.
func (r *Resolver) Resolve(ctx context.Context, intent Intent, ent Entities, rawQuery string) []ResolvedProduct {
	filter := catalog.Filter{Limit: r.limit}
	if ent.Empty() {
		filter.Terms = []string{strings.TrimSpace(rawQuery)}
		filter.Columns = []string{catalog.ColumnName, catalog.ColumnCategory}
	} else {
		filter.Terms = ent.Terms()
		filter.Columns = []string{catalog.ColumnName, catalog.ColumnCategory, catalog.ColumnFeatures}
	}

	rows, err := r.catalog.Search(ctx, filter)
	if err != nil {
		r.log.Warn("product lookup failed, using static catalog",
			zap.String("intent", intent.String()),
			zap.Error(err),
		)
		rows = nil
	}
	if len(rows) == 0 {
		return r.fromStatic(intent, ent, rawQuery)
	}

	return filterByPrice(r.Join(ctx, intent, ent, rows), ent.PriceRanges)
}

// FromContext reloads the products the customer is looking at. Only their
// ids are taken from the caller; names and prices come from the catalog, or
// from the static list when the catalog fails. Unknown ids are dropped.
func (r *Resolver) FromContext(ctx context.Context, intent Intent, ent Entities, shown []catalog.Product) []ResolvedProduct {
	ids := make([]uint64, 0, len(shown))
	seen := make(map[uint64]bool, len(shown))
	for _, p := range shown {
		if p.ID == 0 || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		ids = append(ids, p.ID)
		if len(ids) == r.limit {
			break
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.catalog.ProductsByID(ctx, ids)
	if err != nil {
		r.log.Warn("product context lookup failed, using static catalog", zap.Error(err))
		var out []ResolvedProduct
		for _, p := range r.fallback() {
			if seen[p.ID] {
				out = append(out, ResolvedProduct{Product: p, Quantity: 1, InStock: true, Intent: intent, Entities: ent})
			}
		}
		return out
	}

	byID := make(map[uint64]catalog.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	known := make([]catalog.Product, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			known = append(known, p)
		}
	}
	if len(known) < len(ids) {
		r.log.Debug("unknown products in context dropped", zap.Int("requested", len(ids)), zap.Int("known", len(known)))
	}
	return r.Join(ctx, intent, ent, known)
}

// Join attaches inventory and the active special offer to each product.
// Lookup failures leave the product out of stock without an offer.
func (r *Resolver) Join(ctx context.Context, intent Intent, ent Entities, rows []catalog.Product) []ResolvedProduct {
	out := make([]ResolvedProduct, 0, len(rows))
	for _, p := range rows {
		rp := ResolvedProduct{Product: p, Intent: intent, Entities: ent}

		inv, err := r.catalog.InventoryFor(ctx, p.ID)
		if err != nil {
			r.log.Warn("inventory lookup failed", zap.Uint64("product_id", p.ID), zap.Error(err))
		} else if inv != nil {
			rp.Quantity = inv.Quantity
			rp.InStock = inv.Quantity > 0
			if inv.Price > 0 {
				rp.Price = inv.Price
			}
		}

		offer, err := r.catalog.ActiveOfferFor(ctx, p.ID)
		if err != nil {
			r.log.Warn("special offer lookup failed", zap.Uint64("product_id", p.ID), zap.Error(err))
		} else {
			rp.SpecialOffer = offer
		}
		out = append(out, rp)
	}
	return out
}

func (r *Resolver) fromStatic(intent Intent, ent Entities, rawQuery string) []ResolvedProduct {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(rawQuery)) {
		tok = strings.Trim(tok, ".,!?;:'\"()")
		tok = strings.TrimSuffix(tok, "s")
		if fallbackKeywords[tok] {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) == 0 {
		return nil
	}

	var out []ResolvedProduct
	for _, p := range r.fallback() {
		title := strings.ToLower(p.Name)
		cat := strings.ToLower(p.Category)
		for _, tok := range tokens {
			if strings.Contains(title, tok) || strings.Contains(cat, tok) {
				out = append(out, ResolvedProduct{
					Product:  p,
					Quantity: 1,
					InStock:  true,
					Intent:   intent,
					Entities: ent,
				})
				break
			}
		}
	}
	return out
}

// filterByPrice keeps products inside the first parsable range. When the
// filter would drop everything the unfiltered list is returned.
func filterByPrice(in []ResolvedProduct, ranges []string) []ResolvedProduct {
	for _, s := range ranges {
		lo, hi, ok := ParsePriceRange(s)
		if !ok {
			continue
		}
		var out []ResolvedProduct
		for _, p := range in {
			if p.Price < lo || (hi > 0 && p.Price > hi) {
				continue
			}
			out = append(out, p)
		}
		if len(out) == 0 {
			return in
		}
		return out
	}
	return in
}
