package voice

import (
	"strings"
	"testing"
)

func TestSpeechFriendly(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"gigabytes tight", "Kingston 16GB kit", "Kingston 16 gigabytes kit"},
		{"gigabytes spaced", "Kingston 16 GB kit", "Kingston 16 gigabytes kit"},
		{"terabytes", "Seagate 2TB drive", "Seagate 2 terabytes drive"},
		{"megabytes", "cache 512MB", "cache 512 megabytes"},
		{"ddr spacing", "Crucial DDR4 module", "Crucial D D R 4 module"},
		{"processor with letter suffix", "Intel i5-1145G7 laptop", "Intel i5 1145 G 7 laptop"},
		{"processor plain", "Intel i7-12700 desktop", "Intel i7 12700 desktop"},
		{"acronym ssd", "Samsung SSD 980", "Samsung S S D 980"},
		{"acronym hdmi", "HDMI cable", "H D M I cable"},
		{"lowercase acronym", "usb hub", "U S B hub"},
		{"combined", "Laptop i5-1145G7 16GB SSD", "Laptop i5 1145 G 7 16 gigabytes S S D"},
		{"plain text unchanged", "GamingPro graphics card", "GamingPro graphics card"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpeechFriendly(tt.input); got != tt.want {
				t.Errorf("SpeechFriendly(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSpeechFriendlyIdempotentOnPlainText(t *testing.T) {
	inputs := []string{
		"GamingPro graphics card",
		"wireless mouse black",
		"16 gigabytes already expanded",
	}
	for _, in := range inputs {
		if got := SpeechFriendly(in); got != in {
			t.Errorf("SpeechFriendly(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestShortenForListing(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"cut before spec token",
			"Palit GeForce RTX 5070 16GB GamingPro OC",
			"Palit GeForce RTX 5070",
		},
		{
			"spec token too early keeps three",
			"Kingston 16GB DDR4",
			"Kingston 16GB DDR4",
		},
		{
			"no spec token caps at five",
			"Super Ultra Gaming Tower Case Deluxe Edition",
			"Super Ultra Gaming Tower Case",
		},
		{
			"short name untouched",
			"Wireless Mouse",
			"Wireless Mouse",
		},
		{
			"dimension token",
			"AOC Monitor 24 Inch 1920x1080 Panel",
			"AOC Monitor 24 Inch",
		},
		{
			"hyphenated name",
			"MSI GeForce RTX-5080-Gaming-X-Trio 16GB",
			"MSI GeForce RTX 5080 Gaming",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortenForListing(tt.input); got != tt.want {
				t.Errorf("ShortenForListing(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShortenForListingBounds(t *testing.T) {
	inputs := []string{
		"A",
		"A B",
		"A B C",
		"A B C D E F G H",
		"Palit GeForce RTX 5070 16GB GamingPro",
		"16GB stick",
		"LED RGB strip five meters long",
	}
	for _, in := range inputs {
		got := ShortenForListing(in)
		n := len(strings.Fields(got))
		if n < 1 || n > 5 {
			t.Errorf("ShortenForListing(%q) returned %d tokens, want 1..5", in, n)
		}
		if inTokens := len(strings.Fields(in)); inTokens >= 3 && n < 3 {
			t.Errorf("ShortenForListing(%q) returned %d tokens, want >= 3", in, n)
		}
	}
}
