package assistant

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"go.uber.org/zap"
)

const StoreInfoReply = "Our online store is open 24/7. Customer support is available Monday to Friday, 9am to 6pm (EST). " +
	"You can reach us at support@lumiere-jewelry.com or +1 (555) 013-2024."

const (
	RephraseReply         = "I'm sorry, I didn't quite understand that. Could you please rephrase your question?"
	MultipleProductsReply = "Here are some recommendations that match what you're looking for."
	PriceNotFoundReply    = "I couldn't find the price information for that product. Could you please specify which product you're interested in?"
	AvailabilityNotFound  = "I couldn't find that product. Could you please specify which product you'd like to check?"
	RecommendNotFound     = "I couldn't find anything to recommend yet. Could you tell me more about what you're looking for?"
)

var reDirectCount = regexp.MustCompile(`(?i)\bhow many (necklaces|bracelets|rings|earrings)\b`)

// Responder renders the reply for a classified, resolved query.
type Responder struct {
	catalog  Catalog
	fallback func() []catalog.Product
	log      *zap.Logger
}

func NewResponder(c Catalog, fallback func() []catalog.Product, log *zap.Logger) *Responder {
	if fallback == nil {
		fallback = catalog.StaticProducts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Responder{catalog: c, fallback: fallback, log: log}
}

// DirectCount answers "how many <necklaces|bracelets|rings|earrings>" from the
// catalog without running the classifier.
func (r *Responder) DirectCount(ctx context.Context, query string) (string, bool) {
	m := reDirectCount.FindStringSubmatch(query)
	if m == nil {
		return "", false
	}
	category := strings.ToLower(m[1])
	return fmt.Sprintf("We currently have %d %s in store.", r.countCategory(ctx, category), category), true
}

// Synthesize maps an intent and its products to the reply text.
func (r *Responder) Synthesize(ctx context.Context, query string, intent Intent, ent Entities, products []ResolvedProduct) string {
	return r.synthesize(ctx, query, intent, ent, products, 0)
}

func (r *Responder) synthesize(ctx context.Context, query string, intent Intent, ent Entities, products []ResolvedProduct, depth int) string {
	switch intent {
	case IntentProductInquiry:
		switch len(products) {
		case 0:
			if what := describe(ent); what != "" {
				return fmt.Sprintf("I couldn't find any %s right now. Could you provide more details about what you're looking for?", what)
			}
			return "I couldn't find any products matching your request. Could you provide more details about what you're looking for?"
		case 1:
			return productDetail(products[0])
		default:
			return MultipleProductsReply
		}

	case IntentPriceQuery:
		if len(products) == 0 {
			return PriceNotFoundReply
		}
		p := products[0]
		reply := fmt.Sprintf("The %s is priced at $%.2f.", p.Name, p.Price)
		if p.SpecialOffer != nil && p.SpecialOffer.Description != "" {
			reply += " Special offer: " + p.SpecialOffer.Description
		}
		return reply

	case IntentAvailabilityCheck:
		if len(products) == 0 {
			return AvailabilityNotFound
		}
		p := products[0]
		if p.InStock {
			return fmt.Sprintf("Yes, the %s is in stock. We have %d available.", p.Name, p.Quantity)
		}
		return fmt.Sprintf("Sorry, the %s is currently out of stock.", p.Name)

	case IntentRecommendation:
		if len(products) == 0 {
			return RecommendNotFound
		}
		var b strings.Builder
		b.WriteString("Here are my recommendations:")
		for _, p := range products {
			fmt.Fprintf(&b, "\n- %s - $%.2f (%s)", p.Name, p.Price, stockLabel(p))
		}
		return b.String()

	case IntentStoreInfo:
		return StoreInfoReply

	case IntentProductCount:
		return r.productCount(ctx, ent)

	case IntentCategoryCount:
		return r.categoryCount(ctx)

	case IntentUnknown:
		if depth == 0 && asksHowMany(query) {
			return r.synthesize(ctx, query, IntentProductCount, ent, products, depth+1)
		}
		return RephraseReply
	}
	return RephraseReply
}

func (r *Responder) productCount(ctx context.Context, ent Entities) string {
	if !ent.Fallback && len(ent.Categories) > 0 {
		category := pluralize(ent.Categories[0])
		return fmt.Sprintf("We currently have %d %s in store.", r.countCategory(ctx, category), category)
	}
	n, err := r.catalog.CountProducts(ctx)
	if err != nil {
		r.log.Warn("product count failed, using static catalog", zap.Error(err))
		n = int64(len(r.fallback()))
	}
	return fmt.Sprintf("We currently have %d products in store.", n)
}

func (r *Responder) countCategory(ctx context.Context, category string) int64 {
	n, err := r.catalog.CountByCategory(ctx, category)
	if err == nil {
		return n
	}
	r.log.Warn("category count failed, using static catalog", zap.String("category", category), zap.Error(err))
	for _, p := range r.fallback() {
		if strings.EqualFold(p.Category, category) {
			n++
		}
	}
	return n
}

func (r *Responder) categoryCount(ctx context.Context) string {
	cats, err := r.catalog.DistinctCategories(ctx)
	if err != nil {
		r.log.Warn("category listing failed, using static catalog", zap.Error(err))
		seen := map[string]bool{}
		cats = cats[:0]
		for _, p := range r.fallback() {
			if !seen[p.Category] {
				seen[p.Category] = true
				cats = append(cats, p.Category)
			}
		}
		sort.Strings(cats)
	}
	if len(cats) == 0 {
		return "We don't have any product categories listed right now."
	}
	examples := cats
	if len(examples) > 3 {
		examples = examples[:3]
	}
	noun := "categories"
	if len(cats) == 1 {
		noun = "category"
	}
	return fmt.Sprintf("We have %d product %s, including %s.", len(cats), noun, joinList(examples))
}

func productDetail(p ResolvedProduct) string {
	var b strings.Builder
	b.WriteString(p.Name)
	if p.Description != "" {
		b.WriteString(": " + p.Description)
	}
	if p.Materials != "" {
		b.WriteString("\nMaterials: " + p.Materials)
	}
	if p.Carat != nil {
		fmt.Fprintf(&b, "\nCarat: %.2f", *p.Carat)
	}
	if p.InStock {
		fmt.Fprintf(&b, "\nIn stock (%d available)", p.Quantity)
	} else {
		b.WriteString("\nCurrently out of stock")
	}
	fmt.Fprintf(&b, "\nPrice: $%.2f", p.Price)
	return b.String()
}

// describe renders conditions before materials before the category:
// "discounted rose gold rings".
func describe(ent Entities) string {
	if ent.Fallback {
		return ""
	}
	var parts []string
	parts = append(parts, ent.Conditions...)
	parts = append(parts, ent.Materials...)
	if len(ent.Categories) > 0 {
		parts = append(parts, pluralize(ent.Categories[0]))
	} else if len(parts) > 0 {
		parts = append(parts, "pieces")
	}
	return strings.Join(parts, " ")
}

func stockLabel(p ResolvedProduct) string {
	if p.InStock {
		return "in stock"
	}
	return "out of stock"
}

func pluralize(s string) string {
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
