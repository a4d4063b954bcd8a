// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	// DefaultCountryPrefix is the Kyrgyzstan country calling code.
	DefaultCountryPrefix = "996"
	// DefaultRegion is the region hint passed to the parser.
	DefaultRegion = "KG"

	localMobileLength = 9
)

// Normalizer converts raw phone numbers into the canonical gateway identifier:
// digits only, country prefix included, no leading plus.
type Normalizer struct {
	countryPrefix string
	region        string
}

// NewNormalizer creates a Normalizer for the given country prefix and region.
// Empty values fall back to the Kyrgyzstan defaults.
func NewNormalizer(countryPrefix, region string) *Normalizer {
	if countryPrefix == "" {
		countryPrefix = DefaultCountryPrefix
	}
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{countryPrefix: countryPrefix, region: region}
}

// Normalize returns the canonical form of a raw phone number.
// "700100518" and "+996 (700) 100-518" both normalize to "996700100518".
func (n *Normalizer) Normalize(input string) string {
	cleaned := stripFormatting(input)
	if cleaned == "" {
		return ""
	}

	if strings.HasPrefix(cleaned, n.countryPrefix) {
		return cleaned
	}

	if number, err := phonenumbers.Parse(cleaned, n.region); err == nil {
		if phonenumbers.IsValidNumber(number) {
			return strings.TrimPrefix(phonenumbers.Format(number, phonenumbers.E164), "+")
		}
	}

	if len(cleaned) == localMobileLength {
		return n.countryPrefix + cleaned
	}

	// A trunk zero ahead of a local number is dropped before prepending.
	if len(cleaned) == localMobileLength+1 && strings.HasPrefix(cleaned, "0") {
		return n.countryPrefix + cleaned[1:]
	}

	// Best-effort fallback: prepend the country prefix.
	return n.countryPrefix + cleaned
}

// stripFormatting removes spaces, dashes, parentheses and a leading plus.
func stripFormatting(input string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(input) {
		switch r {
		case ' ', '-', '(', ')', '+':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
