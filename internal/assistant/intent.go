package assistant

import "regexp"

// Intent is the coarse classification of a customer query.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentProductInquiry
	IntentPriceQuery
	IntentAvailabilityCheck
	IntentRecommendation
	IntentStoreInfo
	IntentProductCount
	IntentCategoryCount
)

func (i Intent) String() string {
	switch i {
	case IntentProductInquiry:
		return "PRODUCT_INQUIRY"
	case IntentPriceQuery:
		return "PRICE_QUERY"
	case IntentAvailabilityCheck:
		return "AVAILABILITY_CHECK"
	case IntentRecommendation:
		return "RECOMMENDATION"
	case IntentStoreInfo:
		return "STORE_INFO"
	case IntentProductCount:
		return "PRODUCT_COUNT"
	case IntentCategoryCount:
		return "CATEGORY_COUNT"
	default:
		return "UNKNOWN"
	}
}

func (i Intent) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

const (
	jewelryNouns = `necklace|ring|bracelet|earring|pendant|chain`
	materialList = `silver|gold|moissanite|diamond|gemstone|emerald|ruby|sapphire`
)

var (
	reInquiryVerb  = regexp.MustCompile(`(?i)\b(show|find|want|buy|looking for|search|browse)\b`)
	reJewelryNoun  = regexp.MustCompile(`(?i)\b(` + jewelryNouns + `)s?\b`)
	reMaterial     = regexp.MustCompile(`(?i)\b(` + materialList + `)s?\b`)
	reProductRef   = regexp.MustCompile(`(?i)\b(products?|items?|pieces?|jewel(le)?ry|` + jewelryNouns + `|` + materialList + `)s?\b`)
	rePriceCue     = regexp.MustCompile(`(?i)\b(how much|price[sd]?|pricing|costs?|expensive|cheap(er|est)?)\b`)
	reAvailCue     = regexp.MustCompile(`(?i)\b(available|availability|in stock|have|can (i|we) get)\b`)
	reAvailStrong  = regexp.MustCompile(`(?i)\b(available|availability|in stock)\b`)
	reRecommendCue = regexp.MustCompile(`(?i)\b(recommend\w*|suggest\w*|best|good|popular)\b`)
	reRecommendStr = regexp.MustCompile(`(?i)\b(recommend\w*|suggest\w*)\b`)
	reStoreCue     = regexp.MustCompile(`(?i)\b(store|shop|location|hours|contact|help)\b`)
	reCountCue     = regexp.MustCompile(`(?i)\b(how many|count|total|number of)\b`)
	reCountProduct = regexp.MustCompile(`(?i)\b(products?|items?|things)\b`)
	reCountCat     = regexp.MustCompile(`(?i)\b(category|categories|types?)\b`)
	reHowMany      = regexp.MustCompile(`(?i)\bhow many\b`)
)

// rule matches when at least one of any matches, every one of all matches,
// and none of none matches.
type rule struct {
	intent Intent
	any    []*regexp.Regexp
	all    []*regexp.Regexp
	none   []*regexp.Regexp
}

func (r rule) match(q string) bool {
	if len(r.any) > 0 {
		hit := false
		for _, re := range r.any {
			if re.MatchString(q) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, re := range r.all {
		if !re.MatchString(q) {
			return false
		}
	}
	for _, re := range r.none {
		if re.MatchString(q) {
			return false
		}
	}
	return true
}

// Evaluation order is significant: first match wins.
var rules = []rule{
	{
		intent: IntentProductInquiry,
		any:    []*regexp.Regexp{reInquiryVerb, reJewelryNoun, reMaterial},
		none:   []*regexp.Regexp{rePriceCue, reAvailStrong, reRecommendStr, reCountCue},
	},
	{
		intent: IntentPriceQuery,
		all:    []*regexp.Regexp{rePriceCue, reProductRef},
		none:   []*regexp.Regexp{reCountCue},
	},
	{
		intent: IntentAvailabilityCheck,
		all:    []*regexp.Regexp{reAvailCue, reProductRef},
		none:   []*regexp.Regexp{reCountCue},
	},
	{
		intent: IntentRecommendation,
		all:    []*regexp.Regexp{reRecommendCue, reProductRef},
		none:   []*regexp.Regexp{reCountCue},
	},
	{
		intent: IntentStoreInfo,
		all:    []*regexp.Regexp{reStoreCue},
	},
	{
		intent: IntentProductCount,
		all:    []*regexp.Regexp{reCountCue, reCountProduct},
	},
	{
		intent: IntentCategoryCount,
		all:    []*regexp.Regexp{reCountCue, reCountCat},
	},
}

// Classify returns the intent of the first rule the query satisfies.
func Classify(query string) Intent {
	for _, r := range rules {
		if r.match(query) {
			return r.intent
		}
	}
	return IntentUnknown
}

// FollowUp classifies a question about products the customer is already
// looking at, where the wording names no product ("is this in stock?").
func FollowUp(query string) Intent {
	switch {
	case rePriceCue.MatchString(query):
		return IntentPriceQuery
	case reAvailCue.MatchString(query):
		return IntentAvailabilityCheck
	}
	return IntentUnknown
}

func asksHowMany(query string) bool {
	return reHowMany.MatchString(query)
}
