package usecase

// Vocabulary is the fixed set of recognized product nouns
type Vocabulary map[string]struct{}

// ConflictMap maps a product noun to title fragments that mark a different product type
type ConflictMap map[string][]string

// Contains reports whether token is a recognized product noun
func (v Vocabulary) Contains(token string) bool {
	_, ok := v[token]
	return ok
}

// productNouns lists the accessory types the extension is tuned for
var productNouns = []string{
	"case", "cover", "protector", "charger", "cable", "adapter",
	"strap", "band", "earbuds", "headphones", "stand", "holder",
	"mount", "keyboard", "mouse", "battery", "lens",
}

// screen and cover accessories conflict with each other in both directions
var (
	screenFragments = []string{"screen", "protector", "tempered", "glass", "film"}
	shellFragments  = []string{"case", "cover", "wallet", "bumper"}
	powerFragments  = []string{"charger", "cable", "adapter", "power bank"}
)

// DefaultVocabulary returns the built-in product noun set
func DefaultVocabulary() Vocabulary {
	v := make(Vocabulary, len(productNouns))
	for _, n := range productNouns {
		v[n] = struct{}{}
	}
	return v
}

// DefaultConflictMap returns the built-in conflict table.
// Nouns without an entry disable the smart filter.
func DefaultConflictMap() ConflictMap {
	return ConflictMap{
		"case":      join(screenFragments, powerFragments, []string{"lens", "strap"}),
		"cover":     join(screenFragments, powerFragments, []string{"lens", "strap"}),
		"protector": join(shellFragments, powerFragments, []string{"strap", "stand"}),
		"charger":   join(shellFragments, screenFragments, []string{"strap"}),
		"cable":     join(shellFragments, screenFragments, []string{"strap"}),
		"adapter":   join(shellFragments, screenFragments, []string{"strap"}),
		"strap":     join(shellFragments, screenFragments, powerFragments),
		"band":      join(shellFragments, screenFragments, powerFragments),
		"earbuds":   join(screenFragments, []string{"tips", "strap", "hook"}),
		"stand":     join(shellFragments, screenFragments, []string{"charger", "cable"}),
		"holder":    join(shellFragments, screenFragments, []string{"cable"}),
		"mount":     join(shellFragments, screenFragments, []string{"cable"}),
	}
}

func join(groups ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, s := range g {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
