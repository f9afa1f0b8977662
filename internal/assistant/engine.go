package assistant

import (
	"context"
	"strings"

	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"go.uber.org/zap"
)

// Turn is one prior message of the conversation, oldest first.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	ShortCircuitSmallTalk     = "small_talk"
	ShortCircuitCategoryCount = "category_count"
)

type Reply struct {
	Text         string            `json:"reply"`
	Intent       Intent            `json:"intent"`
	Entities     Entities          `json:"entities"`
	Products     []ResolvedProduct `json:"products,omitempty"`
	ShortCircuit string            `json:"short_circuit,omitempty"`
}

// Engine turns one customer message into a reply. It holds no per-session state.
type Engine struct {
	resolver  *Resolver
	responder *Responder
	log       *zap.Logger
}

// NewEngine wires the resolver and responder over c. fallback supplies the
// static product list used when c fails; nil selects catalog.StaticProducts.
func NewEngine(c Catalog, fallback func() []catalog.Product, searchLimit int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		resolver:  NewResolver(c, fallback, searchLimit, log),
		responder: NewResponder(c, fallback, log),
		log:       log,
	}
}

// GenerateResponse classifies message, resolves products and renders the reply.
// productContext holds products the customer is currently looking at; it is
// used when the message names nothing recognisable ("how much is it?"). Only
// the product ids are trusted.
// The only error returned is the context's.
func (e *Engine) GenerateResponse(ctx context.Context, message string, history []Turn, productContext []catalog.Product) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	query := strings.TrimSpace(message)
	if query == "" {
		return Reply{Text: RephraseReply, Intent: IntentUnknown}, nil
	}

	if text, ok := SmallTalk(query); ok {
		return Reply{Text: text, Intent: IntentUnknown, ShortCircuit: ShortCircuitSmallTalk}, nil
	}
	if text, ok := e.responder.DirectCount(ctx, query); ok {
		if err := ctx.Err(); err != nil {
			return Reply{}, err
		}
		return Reply{Text: text, Intent: IntentProductCount, ShortCircuit: ShortCircuitCategoryCount}, nil
	}

	intent := Classify(query)
	if intent == IntentUnknown && len(productContext) > 0 {
		intent = FollowUp(query)
	}
	ent := Extract(query)

	var products []ResolvedProduct
	if needsProducts(intent) {
		if ent.Fallback && len(productContext) > 0 {
			products = e.resolver.FromContext(ctx, intent, ent, productContext)
		}
		if len(products) == 0 {
			products = e.resolver.Resolve(ctx, intent, ent, query)
		}
	}

	text := e.responder.Synthesize(ctx, query, intent, ent, products)

	e.log.Debug("chat reply generated",
		zap.String("intent", intent.String()),
		zap.Strings("categories", ent.Categories),
		zap.Strings("materials", ent.Materials),
		zap.Int("products", len(products)),
		zap.Int("history", len(history)),
	)

	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	return Reply{Text: text, Intent: intent, Entities: ent, Products: products}, nil
}

func needsProducts(i Intent) bool {
	switch i {
	case IntentProductInquiry, IntentPriceQuery, IntentAvailabilityCheck, IntentRecommendation:
		return true
	}
	return false
}
