package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Heuristics holds the domain knowledge the search pipeline depends on:
// stop words, the recognized brand set, and the GPU model-number suffix
// table. These are catalog-specific tuning data, not algorithm logic, so
// they live in an optional YAML file rather than in code.
type Heuristics struct {
	// StopWords are dropped during tokenization. Includes domain noise
	// words ("series", "model") on top of common English function words.
	StopWords []string `yaml:"stop_words"`

	// Brands is the set of manufacturer names recognized in queries.
	Brands []string `yaml:"brands"`

	// GPUSuffixes expand a two-digit series mention ("rtx 50 series")
	// into concrete model numbers ("RTX 5070", "RTX 5080 super", ...).
	GPUSuffixes []string `yaml:"gpu_suffixes"`

	// BrandMatchWindow is how deep into a product name (in characters) a
	// brand term must appear for the brand post-filter to accept it.
	// Defeats "compatible with Brand X" accessory matches.
	BrandMatchWindow int `yaml:"brand_match_window"`
}

// DefaultHeuristics returns the built-in tables, tuned for a consumer
// electronics catalog.
func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		StopWords: []string{
			"the", "a", "an", "and", "or", "for", "with", "of", "in", "on",
			"to", "is", "are", "do", "you", "have", "any", "some", "i",
			"want", "need", "looking", "me", "my", "please",
			"series", "line", "model", "type", "kind", "version", "gen",
			"generation",
		},
		Brands: []string{
			// GPU line names count as brands here: for filtering purposes
			// "rtx" behaves like a manufacturer mark in product names.
			"rtx", "gtx", "radeon", "geforce",
			"nvidia", "amd", "intel", "asus", "msi", "gigabyte", "palit",
			"zotac", "evga", "sapphire", "corsair", "kingston", "samsung",
			"crucial", "logitech", "razer", "hp", "dell", "lenovo", "acer",
			"inno3d", "gainward", "pny", "xfx", "powercolor",
		},
		GPUSuffixes: []string{"60", "70", "80", "90", "70 ti", "80 super"},

		BrandMatchWindow: 50,
	}
}

// LoadHeuristics loads the heuristics YAML file. Path is determined by the
// HEURISTICS_FILE env var, defaulting to "heuristics.yaml". A missing file
// is not an error; the built-in defaults are returned. Fields absent from
// the file keep their defaults, so a deployment can override just one table.
func LoadHeuristics() (*Heuristics, error) {
	path := getEnv("HEURISTICS_FILE", "heuristics.yaml")

	h := DefaultHeuristics()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, err
	}

	var loaded Heuristics
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, err
	}

	if len(loaded.StopWords) > 0 {
		h.StopWords = loaded.StopWords
	}
	if len(loaded.Brands) > 0 {
		h.Brands = loaded.Brands
	}
	if len(loaded.GPUSuffixes) > 0 {
		h.GPUSuffixes = loaded.GPUSuffixes
	}
	if loaded.BrandMatchWindow > 0 {
		h.BrandMatchWindow = loaded.BrandMatchWindow
	}

	return h, nil
}

// StopWordSet returns the stop words as a lookup set.
func (h *Heuristics) StopWordSet() map[string]bool {
	set := make(map[string]bool, len(h.StopWords))
	for _, w := range h.StopWords {
		set[w] = true
	}
	return set
}

// BrandSet returns the brand names as a lookup set.
func (h *Heuristics) BrandSet() map[string]bool {
	set := make(map[string]bool, len(h.Brands))
	for _, b := range h.Brands {
		set[b] = true
	}
	return set
}
