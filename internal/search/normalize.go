// Package search implements query normalization and the multi-strategy
// product search pipeline.
package search

import (
	"fmt"
	"regexp"
	"strings"

	"shopvoice/internal/config"
)

// NormalizedQuery is the deterministic expansion of one raw user utterance.
type NormalizedQuery struct {
	Original string
	// Terms are the cleaned tokens with stop words removed, deduplicated
	// in first-seen order.
	Terms []string
	// Variations are alternative search strings, deduplicated, original
	// phrasing first. Each is issued upstream as an independent search.
	Variations []string
	// Brands are the recognized brand terms found in the query.
	Brands []string
}

// HasBrand reports whether the query mentioned a recognized brand.
func (q NormalizedQuery) HasBrand() bool {
	return len(q.Brands) > 0
}

var (
	quoteChars     = strings.NewReplacer(`"`, "", "'", "", "`", "")
	nonSearchChars = regexp.MustCompile(`[^a-z0-9\s\-.]+`)
	multiSpace     = regexp.MustCompile(`\s+`)

	gpuSeries  = regexp.MustCompile(`\b(rtx|gtx|radeon)\s*(\d{2})(?:\s*(?:series|line))?\b`)
	memorySize = regexp.MustCompile(`\b(\d+)\s*(gb|tb|mb)\b`)
	hasDigit   = regexp.MustCompile(`\d`)
)

// Normalizer turns raw utterances into NormalizedQuery values. The stop
// word, brand, and GPU-suffix tables are injected so the pipeline can be
// retuned per catalog without touching this code.
type Normalizer struct {
	stopWords   map[string]bool
	brands      map[string]bool
	gpuSuffixes []string
}

// NewNormalizer creates a normalizer from the loaded heuristic tables.
func NewNormalizer(h *config.Heuristics) *Normalizer {
	return &Normalizer{
		stopWords:   h.StopWordSet(),
		brands:      h.BrandSet(),
		gpuSuffixes: h.GPUSuffixes,
	}
}

// Normalize cleans a raw query and generates its search variations. It is
// pure: same input, same output, no I/O. Blank input yields empty Terms and
// Variations.
func (n *Normalizer) Normalize(raw string) NormalizedQuery {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = quoteChars.Replace(cleaned)
	cleaned = nonSearchChars.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(multiSpace.ReplaceAllString(cleaned, " "))

	q := NormalizedQuery{Original: raw}

	seenTerm := make(map[string]bool)
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) < 2 || n.stopWords[tok] || seenTerm[tok] {
			continue
		}
		seenTerm[tok] = true
		q.Terms = append(q.Terms, tok)
		if n.brands[tok] {
			q.Brands = append(q.Brands, tok)
		}
	}

	var variations []string
	if cleaned != "" {
		variations = append(variations, cleaned)
	}
	if joined := strings.Join(q.Terms, " "); joined != "" && joined != cleaned {
		variations = append(variations, joined)
	}

	// GPU-series expansion: "rtx 50 series" becomes one variation per
	// model suffix ("RTX 5070", "RTX 5080 super", ...). Assumes consumer
	// GPU numbering conventions; the suffix table is configuration.
	if m := gpuSeries.FindStringSubmatch(cleaned); m != nil {
		prefix, series := strings.ToUpper(m[1]), m[2]
		for _, suffix := range n.gpuSuffixes {
			variations = append(variations, fmt.Sprintf("%s %s%s", prefix, series, suffix))
		}
	}

	// Memory/storage expansion: both the tight and the spaced spelling,
	// since catalogs are inconsistent about "16GB" vs "16 GB".
	if m := memorySize.FindStringSubmatch(cleaned); m != nil {
		size, unit := m[1], strings.ToUpper(m[2])
		variations = append(variations, size+unit, size+" "+unit)
	}

	// Brand-aware combinations: pair each brand with the first couple of
	// non-brand terms ("palit 5070", "palit gaming").
	var nonBrand []string
	for _, term := range q.Terms {
		if !n.brands[term] {
			nonBrand = append(nonBrand, term)
		}
	}
	for _, brand := range q.Brands {
		for i, term := range nonBrand {
			if i >= 2 {
				break
			}
			variations = append(variations, brand+" "+term)
		}
	}

	// Singleton fallback: isolated model numbers ("5070") and bare brand
	// names are worth a search of their own.
	for _, term := range q.Terms {
		if n.brands[term] || hasDigit.MatchString(term) {
			variations = append(variations, term)
		}
	}

	q.Variations = dedupe(variations)
	return q
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
