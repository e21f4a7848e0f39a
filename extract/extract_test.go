package extract

import "testing"

func TestExtractReference(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		// Dot-delimited caliber codes win over everything else.
		{"Audemars Piguet Royal Oak 26331ST.OO.1220ST.01 full set", "26331ST.OO.1220ST.01"},
		{"Omega Speedmaster 311.30.42.30.01.005 box and papers", "311.30.42.30.01.005"},
		// Dash-joined with 4-digit suffix.
		{"Panerai Luminor PAM-1312 like new", "PAM-1312"},
		// Six digits plus optional letters.
		{"Rolex Submariner Date 116610LN 2019", "116610LN"},
		{"Rolex Datejust 126334 blue dial", "126334"},
		// Fallback: last token with digits and letters.
		{"Tudor Black Bay Fifty-Eight M79030N", "M79030N"},
		// Purely numeric last token is rejected (years, diameters).
		{"Omega Seamaster from 1995", ""},
		{"Vintage dress watch 34mm", "34MM"},
		// No digit+letter token anywhere.
		{"Beautiful gold dress watch", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractReference(tt.text); got != tt.want {
			t.Errorf("ExtractReference(%q) = %q; want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractReferencePriority(t *testing.T) {
	// When both a dotted code and a six-digit code appear, the dotted code
	// wins because it is more specific.
	got := ExtractReference("AP 26331ST.OO.1220ST.01 vs Rolex 116610LN")
	if got != "26331ST.OO.1220ST.01" {
		t.Errorf("expected dotted code to win, got %q", got)
	}
}

func TestGuessBrand(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Rolex Submariner 116610LN", "Rolex"},
		{"patek philippe nautilus 5711", "Patek Philippe"},
		{"Grand Seiko Snowflake SBGA211", "Grand Seiko"}, // longest match beats embedded "Seiko"
		{"IWC Portugieser Chronograph", "IWC"},
		{"Unknown microbrand diver", "Unknown"},
		{"", "Unknown"},
	}

	for _, tt := range tests {
		if got := GuessBrand(tt.text); got != tt.want {
			t.Errorf("GuessBrand(%q) = %q; want %q", tt.text, got, tt.want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"$9,400", 9400},
		{"9.400 EUR", 9400},
		{"CHF 12'500", 12500},
		{"$1,200.50", 1200.50},
		{"8500", 8500},
		{"price on request", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ParsePrice(tt.raw); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}
