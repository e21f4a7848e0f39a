// Package extract turns free-text marketplace listing titles into structured
// identifiers: a reference number, a brand guess, and a numeric price.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// referencePattern is one step of the extraction chain.
type referencePattern struct {
	name string
	re   *regexp.Regexp
}

// referencePatterns is tried in order; the first non-empty match wins.
// Ordering is load-bearing: the most specific shapes come first so that e.g.
// a caliber code "26331ST.OO.1220ST.01" is not truncated by the looser
// 6-digit rule. Do not reorder without checking the extractor tests.
var referencePatterns = []referencePattern{
	// Dot-delimited codes of 3+ segments (AP, Breguet caliber style).
	{"dotted", regexp.MustCompile(`\b[A-Z0-9]+\.[A-Z0-9]+(?:\.[A-Z0-9]+)+\b`)},
	// Dash-joined alphanumeric with a 4-digit suffix (IWC "IW371605"-adjacent
	// dealer formats like "PAM-1312" or "311.30-4230").
	{"dashed", regexp.MustCompile(`\b[A-Z0-9]+-[A-Z]*\d{4}[A-Z0-9]*\b`)},
	// Classic tool-watch references: six digits plus an optional letter
	// block ("116610LN", "126334").
	{"sixdigit", regexp.MustCompile(`\b\d{6}[A-Z]{0,3}\b`)},
}

var (
	hasDigit  = regexp.MustCompile(`\d`)
	hasLetter = regexp.MustCompile(`[A-Za-z]`)
	onlyDigit = regexp.MustCompile(`^\d+$`)
)

// ExtractReference scans free text for a manufacturer reference number.
// Returns "" when nothing plausible is found; absence is not an error.
func ExtractReference(text string) string {
	if text == "" {
		return ""
	}
	upper := strings.ToUpper(text)

	for _, p := range referencePatterns {
		if m := p.re.FindString(upper); m != "" {
			return m
		}
	}

	// Fallback: the last whitespace token, if it looks like a mixed
	// alphanumeric code. Known to misfire on things like "Ref 2021" being
	// absent while "116610LN" at the end is picked up; purely numeric
	// tokens (years, diameters) are rejected.
	fields := strings.Fields(upper)
	if len(fields) == 0 {
		return ""
	}
	last := strings.Trim(fields[len(fields)-1], ".,;:()[]")
	if last == "" || onlyDigit.MatchString(last) {
		return ""
	}
	if hasDigit.MatchString(last) && hasLetter.MatchString(last) && isAlphanumeric(last) {
		return last
	}
	return ""
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// brandVocabulary is the fixed set of recognized brand names. Scanned
// longest-first so "A. Lange & Söhne" beats any shorter embedded name.
var brandVocabulary = []string{
	"A. Lange & Söhne",
	"Audemars Piguet",
	"Vacheron Constantin",
	"Patek Philippe",
	"Jaeger-LeCoultre",
	"Girard-Perregaux",
	"Grand Seiko",
	"Breitling",
	"Blancpain",
	"Longines",
	"Tag Heuer",
	"Tudor",
	"Panerai",
	"Omega",
	"Cartier",
	"Hublot",
	"Zenith",
	"Breguet",
	"Rolex",
	"Seiko",
	"IWC",
}

// GuessBrand finds the first vocabulary brand contained in the text,
// preferring longer names. Unknown is a tag, never a failure.
func GuessBrand(text string) string {
	lower := strings.ToLower(text)
	best := ""
	for _, brand := range brandVocabulary {
		if strings.Contains(lower, strings.ToLower(brand)) && len(brand) > len(best) {
			best = brand
		}
	}
	if best == "" {
		return "Unknown"
	}
	return best
}

var priceValue = regexp.MustCompile(`\d[\d.,]*`)

// ParsePrice extracts a numeric amount from price text like "$9,400",
// "9.400 EUR" or "CHF 12'500". Returns 0 when no amount can be read; the
// caller decides whether zero is meaningful.
func ParsePrice(raw string) float64 {
	raw = strings.ReplaceAll(raw, "'", "")
	m := priceValue.FindString(raw)
	if m == "" {
		return 0
	}

	// Disambiguate separators: a trailing group of exactly two digits after
	// the last separator is treated as decimals, everything else as
	// thousands grouping.
	lastDot := strings.LastIndexAny(m, ".,")
	if lastDot >= 0 && len(m)-lastDot-1 == 2 {
		intPart := stripSeparators(m[:lastDot])
		m = intPart + "." + m[lastDot+1:]
	} else {
		m = stripSeparators(m)
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func stripSeparators(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}
