package expand

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/chipmap/pkg/chipmap/internalerr"
)

func TestExpandCommaList(t *testing.T) {
	e := New("")
	got, err := e.Expand("GeForce GT 630, 635, 640, 710M, 720M, 730M, 735M, 740M")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"GeForce GT 630", "GeForce GT 635", "GeForce GT 640", "GeForce GT 710M",
		"GeForce GT 720M", "GeForce GT 730M", "GeForce GT 735M", "GeForce GT 740M",
	}, got)
}

func TestExpandGroupedAlternatives(t *testing.T) {
	e := New("GeForce")
	got, err := e.Expand("GeForce FX 5100 Go, 5200 (Ultra, Go), 5300, 5500, GeForce PCX 5300")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"GeForce FX 5100 Go", "GeForce FX 5200 Ultra", "GeForce FX 5200 Go",
		"GeForce FX 5300", "GeForce FX 5500", "GeForce PCX 5300",
	}, got)
}

func TestExpandSingleAlternativeIsOptional(t *testing.T) {
	got, err := New("").Expand("GeForce GT 640 (Fermi)")
	require.NoError(t, err)
	assert.Equal(t, []string{"GeForce GT 640", "GeForce GT 640Fermi"}, got)
}

func TestExpandCases(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"missing brand", "Riva TNT2, TNT2 Ultra", nil},
		{"blank", "   ", nil},
		{"single name", "GeForce 8800 GTX", []string{"GeForce 8800 GTX"}},
		{"brand only lead", "GeForce 8800 GTX, 8800 GTS", []string{"GeForce 8800 GTX", "GeForce 8800 GTS"}},
		{"digit in brand word", "GeForce4 MX 420, 440 Go", []string{"GeForce4 MX 420", "GeForce4 MX 440 Go"}},
		{"no model number", "GeForce GTX TITAN, TITAN Black", []string{"GeForce GTX TITAN", "GeForce GTX TITAN Black"}},
		{"optional with suffix", "GeForce 9600 (Green) GT", []string{"GeForce 9600 GT", "GeForce 9600Green GT"}},
		{"empty group", "GeForce GT 640 ()", []string{"GeForce GT 640"}},
		{"empty alternative", "GeForce 6800 (Ultra, )", []string{"GeForce 6800 Ultra", "GeForce 6800"}},
		{"two groups", "GeForce (GT, GTS) 250 (OEM, Retail)", []string{
			"GeForce GT 250 OEM", "GeForce GT 250 Retail", "GeForce GTS 250 OEM", "GeForce GTS 250 Retail",
		}},
		{"new tier word", "GeForce GT 630, GTX 760, 770", []string{"GeForce GT 630", "GeForce GTX 760", "GeForce GTX 770"}},
		{"other brand word", "GeForce GT 630, Quadro 600", []string{"GeForce GT 630", "GeForce Quadro 600"}},
		{"lead tier word repeated", "GeForce GT 630, GT 640", []string{"GeForce GT 630", "GeForce GT 640"}},
		{"trailing comma", "GeForce GT 630,", []string{"GeForce GT 630"}},
		{"inner spacing kept", "GeForce  GT 630", []string{"GeForce  GT 630"}},
	}

	e := New("GeForce")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Expand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandIdempotent(t *testing.T) {
	e := New("")
	for _, name := range []string{"GeForce GT 630", "GeForce FX 5200 Ultra", "GeForce GTX 1080 Ti", "GeForce4 Ti 4600"} {
		got, err := e.Expand(name)
		require.NoError(t, err)
		assert.Equal(t, []string{name}, got)

		again, err := e.Expand(got[0])
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestExpandMalformedGroups(t *testing.T) {
	tests := []struct {
		line   string
		want   error
		offset int
	}{
		{"GeForce 6800 (Ultra (AGP), GT)", internalerr.ErrNestedGroup, 20},
		{"GeForce 6800 (Ultra, GT", internalerr.ErrUnbalancedGroup, 13},
		{"GeForce 6800 Ultra), GT", internalerr.ErrUnbalancedGroup, 18},
	}

	e := New("")
	for _, tt := range tests {
		got, err := e.Expand(tt.line)
		require.Error(t, err, tt.line)
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, tt.want), "%q: %v", tt.line, err)

		var syn *SyntaxError
		require.True(t, errors.As(err, &syn))
		assert.Equal(t, tt.offset, syn.Offset)
		assert.Equal(t, tt.line, syn.Text)
	}
}

func TestExpandNeverLeavesParens(t *testing.T) {
	lines := []string{
		"GeForce FX 5100 Go, 5200 (Ultra, Go), 5300",
		"GeForce GT 640 (Fermi), 640 (Kepler)",
		"GeForce (GT, GTS) 250 (OEM)",
		"GeForce 6800 (Ultra (AGP))",
		"GeForce 6800 (",
		"GeForce 6800 )",
		"GeForce ()",
	}
	e := New("")
	for _, line := range lines {
		names, _ := e.Expand(line)
		for _, n := range names {
			assert.False(t, strings.ContainsAny(n, "()"), "%q produced %q", line, n)
		}
	}
}

func TestContinueCarriesLead(t *testing.T) {
	e := New("")

	names, lead, err := e.Continue("", "GeForce GT 630, 640")
	require.NoError(t, err)
	assert.Equal(t, []string{"GeForce GT 630", "GeForce GT 640"}, names)
	assert.Equal(t, "GeForce GT ", lead)

	names, lead, err = e.Continue(lead, "710M, 720M")
	require.NoError(t, err)
	assert.Equal(t, []string{"GeForce GT 710M", "GeForce GT 720M"}, names)
	assert.Equal(t, "GeForce GT ", lead)

	names, lead, err = e.Continue(lead, "GeForce GTX 750 Ti")
	require.NoError(t, err)
	assert.Equal(t, []string{"GeForce GTX 750 Ti"}, names)
	assert.Equal(t, "GeForce GTX ", lead)
}

func TestContinueAppliesLeadToAnyText(t *testing.T) {
	e := New("")

	names, lead, err := e.Continue("GeForce GTX ", "TITAN Black")
	require.NoError(t, err)
	assert.Equal(t, []string{"GeForce GTX TITAN Black"}, names)
	assert.Equal(t, "GeForce GTX ", lead)

	names, lead, err = e.Continue("GeForce GT ", "Riva TNT2")
	require.NoError(t, err)
	assert.Equal(t, []string{"GeForce Riva TNT2"}, names)
	assert.Equal(t, "GeForce Riva ", lead)
}

func TestHasTier(t *testing.T) {
	assert.True(t, hasTier("GTX 760"))
	assert.True(t, hasTier("GT 640 (OEM)"))
	assert.False(t, hasTier("710M"))
	assert.False(t, hasTier("5200 (Ultra, Go)"))
	assert.False(t, hasTier("TITAN Black"))
	assert.False(t, hasTier("Ti"))
}

func TestContinueErrorKeepsLead(t *testing.T) {
	e := New("")
	names, lead, err := e.Continue("GeForce GT ", "640 (Fermi")
	assert.Error(t, err)
	assert.Nil(t, names)
	assert.Equal(t, "GeForce GT ", lead)
}

func TestLeadOf(t *testing.T) {
	assert.Equal(t, "GeForce GT ", leadOf("GeForce GT 630"))
	assert.Equal(t, "GeForce ", leadOf("GeForce 8800 GTX"))
	assert.Equal(t, "GeForce FX ", leadOf("GeForce FX 5200 (Ultra, Go)"))
	assert.Equal(t, "GeForce ", leadOf("GeForce"))
}

func TestBrand(t *testing.T) {
	assert.Equal(t, DefaultBrand, New("  ").Brand())
	assert.Equal(t, "Quadro", New("Quadro").Brand())

	got, err := New("Quadro").Expand("Quadro FX 1800, 3800")
	require.NoError(t, err)
	assert.Equal(t, []string{"Quadro FX 1800", "Quadro FX 3800"}, got)
}
