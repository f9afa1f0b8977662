package catalog

func carat(v float64) *float64 { return &v }

// StaticProducts is the built-in showcase list used when the catalog database
// cannot answer. IDs live in a range the database never assigns in practice.
func StaticProducts() []Product {
	return []Product{
		{
			ID:          900001,
			Name:        "Moissanite Tennis Necklace",
			Category:    "Necklaces",
			Price:       449.00,
			Materials:   "925 sterling silver, moissanite",
			Carat:       carat(5.0),
			Description: "A continuous line of brilliant-cut moissanite stones set in sterling silver.",
			Features:    "silver moissanite",
		},
		{
			ID:          900002,
			Name:        "Gold Rope Chain Necklace",
			Category:    "Necklaces",
			Price:       289.00,
			Materials:   "14k gold vermeil",
			Description: "A classic rope chain with a secure lobster clasp.",
			Features:    "gold chain",
		},
		{
			ID:          900003,
			Name:        "Moissanite Solitaire Ring",
			Category:    "Rings",
			Price:       329.00,
			Materials:   "925 sterling silver, moissanite",
			Carat:       carat(1.0),
			Description: "A round brilliant moissanite on a slim four-prong band.",
			Features:    "silver moissanite",
		},
		{
			ID:          900004,
			Name:        "Emerald Halo Ring",
			Category:    "Rings",
			Price:       399.00,
			Materials:   "14k gold, lab emerald, moissanite",
			Carat:       carat(1.5),
			Description: "An emerald-cut green stone framed by a halo of moissanite.",
			Features:    "gold emerald moissanite",
		},
		{
			ID:          900005,
			Name:        "Moissanite Tennis Bracelet",
			Category:    "Bracelets",
			Price:       499.00,
			Materials:   "925 sterling silver, moissanite",
			Carat:       carat(7.0),
			Description: "Four-prong set moissanite links with a box clasp.",
			Features:    "silver moissanite",
		},
		{
			ID:          900006,
			Name:        "Moissanite Stud Earrings",
			Category:    "Earrings",
			Price:       159.00,
			Materials:   "925 sterling silver, moissanite",
			Carat:       carat(2.0),
			Description: "Round moissanite studs with screw backs.",
			Features:    "silver moissanite",
		},
		{
			ID:          900007,
			Name:        "Sapphire Drop Pendant",
			Category:    "Pendants",
			Price:       219.00,
			Materials:   "925 sterling silver, lab sapphire",
			Carat:       carat(1.2),
			Description: "A pear-shaped sapphire on a fine cable chain.",
			Features:    "silver sapphire",
		},
	}
}
