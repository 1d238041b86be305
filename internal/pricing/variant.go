package pricing

// Variant is a priced (color, capacity) option. Empty strings mean unspecified.
type Variant struct {
	Color    string `json:"color"`
	Capacity string `json:"capacity"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
}

// IsDefault reports whether this is the catch-all variant.
func (v Variant) IsDefault() bool {
	return normalizeOption(v.Color) == "" && normalizeOption(v.Capacity) == ""
}

// Selection is the color/capacity a shopper asked for.
type Selection struct {
	Color    string `json:"color"`
	Capacity string `json:"capacity"`
}

// ResolveVariant picks the variant for a selection after trimming and
// case-folding both sides. The first tier that hits wins:
// exact color and capacity, then capacity with empty color, then color with
// empty capacity, then the default variant. Returns nil when nothing fits.
func ResolveVariant(variants []Variant, sel Selection) *Variant {
	if len(variants) == 0 {
		return nil
	}
	color := normalizeOption(sel.Color)
	capacity := normalizeOption(sel.Capacity)

	type key struct{ color, capacity string }
	find := func(want key) *Variant {
		for i := range variants {
			v := variants[i]
			if normalizeOption(v.Color) == want.color && normalizeOption(v.Capacity) == want.capacity {
				return &v
			}
		}
		return nil
	}

	if v := find(key{color, capacity}); v != nil {
		return v
	}
	if capacity != "" {
		if v := find(key{"", capacity}); v != nil {
			return v
		}
	}
	if color != "" {
		if v := find(key{color, ""}); v != nil {
			return v
		}
	}
	return find(key{"", ""})
}
