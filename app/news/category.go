package news

import "strings"

// DefaultCategory is the label applied when a source declares none.
const DefaultCategory = "nasional"

// DefaultSynonyms maps free-text category variants to the canonical
// topic labels. Unmapped input passes through lowercased, which lets a
// new label appear without a code change.
var DefaultSynonyms = map[string]string{
	"nasional": "nasional",
	"politik":  "politik",

	"dunia":         "dunia",
	"world":         "dunia",
	"internasional": "dunia",
	"international": "dunia",
	"global":        "dunia",

	"sport":    "sport",
	"olahraga": "sport",
	"sports":   "sport",
	"football": "sport",
	"bola":     "sport",

	"bisnis":   "bisnis",
	"ekonomi":  "bisnis",
	"economy":  "bisnis",
	"business": "bisnis",
	"finance":  "bisnis",
	"market":   "bisnis",

	"tekno":      "tekno",
	"teknologi":  "tekno",
	"technology": "tekno",
	"tech":       "tekno",
	"sains":      "tekno",

	"hiburan":       "hiburan",
	"entertainment": "hiburan",
	"seleb":         "hiburan",
	"showbiz":       "hiburan",

	"music": "music",
	"musik": "music",
	"movie": "movie",
	"film":  "movie",

	"hobi":      "hobi",
	"lifestyle": "hobi",
}

// CategoryNormalizer maps free-text categories onto the canonical
// label set. The synonym table is injected so the mapping stays a
// plain value rather than ambient state.
type CategoryNormalizer struct {
	synonyms map[string]string
	fallback string
}

func NewCategoryNormalizer(synonyms map[string]string, fallback string) *CategoryNormalizer {
	return &CategoryNormalizer{synonyms: synonyms, fallback: fallback}
}

func NewDefaultCategoryNormalizer() *CategoryNormalizer {
	return NewCategoryNormalizer(DefaultSynonyms, DefaultCategory)
}

// Normalize is pure and total: empty input yields the fallback label,
// unrecognized input passes through trimmed and lowercased.
func (c *CategoryNormalizer) Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return c.fallback
	}
	if canonical, ok := c.synonyms[key]; ok {
		return canonical
	}
	return key
}
