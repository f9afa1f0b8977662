package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

// Entities are the structured fragments pulled out of one query.
// Materials and Conditions are kept apart; Features joins them when a caller
// needs a single list.
type Entities struct {
	ProductNames []string `json:"product_names"`
	Categories   []string `json:"categories"`
	Materials    []string `json:"materials"`
	Conditions   []string `json:"conditions"`
	PriceRanges  []string `json:"price_ranges"`
	// Fallback is set when nothing was recognised and the whole query was
	// copied into ProductNames and Categories.
	Fallback bool `json:"fallback,omitempty"`
}

// Features returns materials followed by conditions.
func (e Entities) Features() []string {
	out := make([]string, 0, len(e.Materials)+len(e.Conditions))
	out = append(out, e.Materials...)
	return append(out, e.Conditions...)
}

func (e Entities) Empty() bool {
	return len(e.ProductNames) == 0 && len(e.Categories) == 0 &&
		len(e.Materials) == 0 && len(e.Conditions) == 0 && len(e.PriceRanges) == 0
}

// Terms lists every extracted fragment, in field order, without duplicates.
func (e Entities) Terms() []string {
	var out []string
	seen := map[string]bool{}
	for _, list := range [][]string{e.ProductNames, e.Categories, e.Materials, e.Conditions} {
		for _, s := range list {
			k := strings.ToLower(s)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, s)
		}
	}
	return out
}

var (
	reCapitalized = regexp.MustCompile(`\b[A-Z][a-zA-Z'-]+\b`)
	reCategory    = regexp.MustCompile(`(?i)\b(` + jewelryNouns + `)s?\b`)
	reMaterials   = regexp.MustCompile(`(?i)\b(rose gold|silver|gold|moissanite|diamond|gemstone|emerald|ruby|sapphire|platinum)s?\b`)
	reConditions  = regexp.MustCompile(`(?i)\b(new|used|discounted|limited edition)\b`)
	rePriceRange  = regexp.MustCompile(`(?i)\$?\d+(?:\.\d+)?\s+(?:to|and|or)\b(?:\s*\$?\d+(?:\.\d+)?)?`)
	reNumber      = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Capitalised words that open ordinary questions rather than name a product.
var nameStopwords = map[string]bool{
	"I": true, "I'm": true, "Do": true, "Does": true, "Can": true, "Could": true,
	"What": true, "What's": true, "Which": true, "Who": true, "How": true,
	"Is": true, "Are": true, "Show": true, "Find": true, "Please": true,
	"Any": true, "The": true, "A": true, "An": true, "Hi": true, "Hello": true,
	"Hey": true, "Tell": true, "Give": true, "Where": true, "When": true,
	"Have": true, "Got": true, "Looking": true, "Want": true, "Need": true,
}

// Extract pulls product names, categories, materials, conditions and price
// ranges out of query.
func Extract(query string) Entities {
	var e Entities

	for _, tok := range reCapitalized.FindAllString(query, -1) {
		if nameStopwords[tok] {
			continue
		}
		e.ProductNames = appendUnique(e.ProductNames, tok)
	}
	for _, m := range reCategory.FindAllStringSubmatch(query, -1) {
		e.Categories = appendUnique(e.Categories, strings.ToLower(m[1]))
	}
	for _, m := range reMaterials.FindAllStringSubmatch(query, -1) {
		e.Materials = appendUnique(e.Materials, strings.ToLower(m[1]))
	}
	for _, m := range reConditions.FindAllString(query, -1) {
		e.Conditions = appendUnique(e.Conditions, strings.ToLower(m))
	}
	for _, m := range rePriceRange.FindAllString(query, -1) {
		e.PriceRanges = append(e.PriceRanges, strings.TrimSpace(m))
	}

	if e.Empty() {
		if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
			e.Categories = []string{q}
			e.ProductNames = []string{q}
			e.Fallback = true
		}
	}
	return e
}

// ParsePriceRange turns a matched range such as "100 to 300" into bounds.
// An open range ("200 or") has max 0.
func ParsePriceRange(s string) (min, max float64, ok bool) {
	nums := reNumber.FindAllString(s, 2)
	if len(nums) == 0 {
		return 0, 0, false
	}
	lo, err := strconv.ParseFloat(nums[0], 64)
	if err != nil {
		return 0, 0, false
	}
	if len(nums) == 1 {
		return lo, 0, true
	}
	hi, err := strconv.ParseFloat(nums[1], 64)
	if err != nil {
		return 0, 0, false
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
