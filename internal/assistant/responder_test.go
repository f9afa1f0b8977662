package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
)

func resolved(name string, price float64, qty int, offer string) ResolvedProduct {
	rp := ResolvedProduct{
		Product:  catalog.Product{Name: name, Price: price},
		Quantity: qty,
		InStock:  qty > 0,
	}
	if offer != "" {
		rp.SpecialOffer = &catalog.SpecialOffer{Description: offer, IsActive: true}
	}
	return rp
}

func TestSynthesize_PriceQuery(t *testing.T) {
	r := NewResponder(storeCatalog(), noFallback, nil)
	ctx := context.Background()

	got := r.Synthesize(ctx, "", IntentPriceQuery, Entities{}, []ResolvedProduct{resolved("Halo Ring", 399, 1, "10% off")})
	assert.Equal(t, "The Halo Ring is priced at $399.00. Special offer: 10% off", got)

	assert.Equal(t, PriceNotFoundReply, r.Synthesize(ctx, "", IntentPriceQuery, Entities{}, nil))
}

func TestSynthesize_Availability(t *testing.T) {
	r := NewResponder(storeCatalog(), noFallback, nil)
	ctx := context.Background()

	assert.Equal(t, "Yes, the Halo Ring is in stock. We have 3 available.",
		r.Synthesize(ctx, "", IntentAvailabilityCheck, Entities{}, []ResolvedProduct{resolved("Halo Ring", 399, 3, "")}))
	assert.Equal(t, "Sorry, the Halo Ring is currently out of stock.",
		r.Synthesize(ctx, "", IntentAvailabilityCheck, Entities{}, []ResolvedProduct{resolved("Halo Ring", 399, 0, "")}))
	assert.Equal(t, AvailabilityNotFound, r.Synthesize(ctx, "", IntentAvailabilityCheck, Entities{}, nil))
}

func TestSynthesize_Recommendation(t *testing.T) {
	r := NewResponder(storeCatalog(), noFallback, nil)

	got := r.Synthesize(context.Background(), "", IntentRecommendation, Entities{}, []ResolvedProduct{
		resolved("Halo Ring", 399, 3, ""),
		resolved("Cuff", 89.5, 0, ""),
	})
	assert.Equal(t, "Here are my recommendations:\n- Halo Ring - $399.00 (in stock)\n- Cuff - $89.50 (out of stock)", got)
}

func TestSynthesize_ProductInquiry(t *testing.T) {
	r := NewResponder(storeCatalog(), noFallback, nil)
	ctx := context.Background()

	carat := 1.5
	one := ResolvedProduct{
		Product: catalog.Product{
			Name: "Emerald Halo Ring", Description: "Green and bright.", Materials: "14k gold", Carat: &carat, Price: 399,
		},
		Quantity: 2,
		InStock:  true,
	}
	assert.Equal(t, "Emerald Halo Ring: Green and bright.\nMaterials: 14k gold\nCarat: 1.50\nIn stock (2 available)\nPrice: $399.00",
		r.Synthesize(ctx, "", IntentProductInquiry, Entities{}, []ResolvedProduct{one}))

	assert.Equal(t, MultipleProductsReply,
		r.Synthesize(ctx, "", IntentProductInquiry, Entities{}, []ResolvedProduct{one, one}))

	none := r.Synthesize(ctx, "", IntentProductInquiry, Extract("any discounted rose gold rings"), nil)
	assert.True(t, strings.HasPrefix(none, "I couldn't find any discounted rose gold rings right now."), none)
}

func TestSynthesize_Counts(t *testing.T) {
	r := NewResponder(storeCatalog(), noFallback, nil)
	ctx := context.Background()

	assert.Equal(t, "We have 4 product categories, including Rings, Bracelets, and Necklaces.",
		r.Synthesize(ctx, "how many categories", IntentCategoryCount, Entities{}, nil))
	assert.Equal(t, "We currently have 5 products in store.",
		r.Synthesize(ctx, "how many products", IntentProductCount, Extract("how many products"), nil))
}

func TestSynthesize_UnknownHowManyRecursesOnce(t *testing.T) {
	fc := storeCatalog()
	r := NewResponder(fc, noFallback, nil)

	q := "how many pendants do you sell"
	got := r.Synthesize(context.Background(), q, IntentUnknown, Extract(q), nil)
	assert.Equal(t, "We currently have 0 pendants in store.", got)
	assert.Equal(t, 1, fc.counts)
}

func TestSynthesize_UnknownAndStoreInfo(t *testing.T) {
	r := NewResponder(storeCatalog(), noFallback, nil)
	ctx := context.Background()

	assert.Equal(t, RephraseReply, r.Synthesize(ctx, "opals", IntentUnknown, Extract("opals"), nil))
	assert.Equal(t, StoreInfoReply, r.Synthesize(ctx, "hours", IntentStoreInfo, Entities{}, nil))
}

func TestSynthesize_CountFailuresUseStaticCatalog(t *testing.T) {
	fc := &fakeCatalog{countErr: errors.New("timeout")}
	r := NewResponder(fc, catalog.StaticProducts, nil)
	ctx := context.Background()

	assert.Equal(t, "We currently have 7 products in store.",
		r.Synthesize(ctx, "how many items", IntentProductCount, Extract("how many items"), nil))
	assert.Equal(t, "We have 5 product categories, including Bracelets, Earrings, and Necklaces.",
		r.Synthesize(ctx, "how many categories", IntentCategoryCount, Entities{}, nil))

	text, ok := r.DirectCount(ctx, "How many rings do you have?")
	assert.True(t, ok)
	assert.Equal(t, "We currently have 2 rings in store.", text)
}
