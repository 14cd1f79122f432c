// Package voice rewrites product names for speech synthesis. Both
// transforms are pure text functions; they share no state with the rest of
// the pipeline.
package voice

import (
	"regexp"
	"strings"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

// speechRules run in order. Processor patterns must precede the generic
// letter-spacing rules so "i5-1145G7" is split before any acronym rule can
// touch its fragments.
var speechRules = []rule{
	// Processor models: i5-1145G7 -> "i5 1145 G 7", i7-12700 -> "i7 12700".
	{regexp.MustCompile(`(?i)\b(i[3579])-(\d{3,5})([a-z])(\d+)\b`), "$1 $2 $3 $4"},
	{regexp.MustCompile(`(?i)\b(i[3579])-(\d{3,5})\b`), "$1 $2"},

	// Storage and memory units.
	{regexp.MustCompile(`(?i)\b(\d+)\s*gb\b`), "$1 gigabytes"},
	{regexp.MustCompile(`(?i)\b(\d+)\s*tb\b`), "$1 terabytes"},
	{regexp.MustCompile(`(?i)\b(\d+)\s*mb\b`), "$1 megabytes"},

	// Memory type: DDR4 -> "D D R 4".
	{regexp.MustCompile(`(?i)\bddr(\d)\b`), "D D R $1"},

	// Acronyms a synthesizer would try to pronounce as words.
	{regexp.MustCompile(`(?i)\bssd\b`), "S S D"},
	{regexp.MustCompile(`(?i)\bhdd\b`), "H D D"},
	{regexp.MustCompile(`(?i)\blcd\b`), "L C D"},
	{regexp.MustCompile(`(?i)\bled\b`), "L E D"},
	{regexp.MustCompile(`(?i)\busb\b`), "U S B"},
	{regexp.MustCompile(`(?i)\bhdmi\b`), "H D M I"},
}

// SpeechFriendly expands technical shorthand so a speech synthesizer reads
// it naturally. Text containing no matchable tokens is returned unchanged.
func SpeechFriendly(name string) string {
	for _, r := range speechRules {
		name = r.re.ReplaceAllString(name, r.repl)
	}
	return name
}

const (
	minListingTokens = 3
	maxListingTokens = 5
)

var (
	listingSplit = regexp.MustCompile(`[\s\-–]+`)

	// A token that starts the spec tail of a product name: sized units,
	// display dimensions, or interface/memory acronyms.
	specToken = regexp.MustCompile(`(?i)^(\d+(gb|tb|mb|mm|cm|mhz|w|mah)|\d+x\d+|rgb|led|lcd|usb|hdmi|ddr\d)`)
)

// ShortenForListing trims a product name down to its brand-and-model head
// for spoken listings. The name is cut just before the first spec-looking
// token, but never below 3 tokens and never above 5.
func ShortenForListing(name string) string {
	tokens := listingSplit.Split(strings.TrimSpace(name), -1)
	if len(tokens) > 0 && tokens[0] == "" {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return name
	}

	cut := len(tokens)
	for i, tok := range tokens {
		if specToken.MatchString(tok) {
			cut = i
			break
		}
	}

	if cut < minListingTokens {
		cut = minListingTokens
	}
	if cut > maxListingTokens {
		cut = maxListingTokens
	}
	if cut > len(tokens) {
		cut = len(tokens)
	}

	return strings.Join(tokens[:cut], " ")
}
