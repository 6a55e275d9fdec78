package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeOwnerName(t *testing.T) {
	assert.Equal(t, "SMITH, JOHN", NormalizeOwnerName("  smith,   john  "))
	// Punctuation is load-bearing for classification and must survive.
	assert.Equal(t, "SMITH, JOHN & MARY", NormalizeOwnerName("Smith, John & Mary"))
}

func TestNormalizeTerm(t *testing.T) {
	assert.Equal(t, "CORN NECK", NormalizeTerm("  corn neck "))
	assert.Equal(t, "", NormalizeTerm("   "))
}

func TestStripWordPunctuation(t *testing.T) {
	assert.Equal(t, "LLC", StripWordPunctuation("L.L.C."))
	assert.Equal(t, "SMITH", StripWordPunctuation("SMITH,"))
	assert.Equal(t, "12", StripWordPunctuation("1/2"))
}

func TestNormalizeZip(t *testing.T) {
	assert.Equal(t, "02807", NormalizeZip("02807"))
	assert.Equal(t, "028071234", NormalizeZip("02807-1234"))
	assert.Equal(t, "", NormalizeZip("0280"))
	assert.Equal(t, "", NormalizeZip("abc"))
}

func TestNormalizeStreet(t *testing.T) {
	assert.Equal(t, "CORN NECK RD", NormalizeStreet("Corn Neck Road"))
	assert.Equal(t, "W BEACH ST", NormalizeStreet("West Beach Street"))
	assert.Equal(t, "OCEAN AVE", NormalizeStreet("Ocean Ave."))
	// Already-abbreviated forms index identically to full forms.
	assert.Equal(t, NormalizeStreet("Corn Neck Road"), NormalizeStreet("CORN NECK RD"))
}

func TestStreetTypeAbbreviation(t *testing.T) {
	abbr, ok := StreetTypeAbbreviation("Avenue")
	assert.True(t, ok)
	assert.Equal(t, "AVE", abbr)

	abbr, ok = StreetTypeAbbreviation("AVE")
	assert.True(t, ok)
	assert.Equal(t, "AVE", abbr)

	_, ok = StreetTypeAbbreviation("NECK")
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	t.Run("apply known normalizer", func(t *testing.T) {
		assert.Equal(t, "MAIN", Apply("main", "uppercase"))
	})

	t.Run("unknown normalizer passes through", func(t *testing.T) {
		assert.Equal(t, "main", Apply("main", "no_such"))
	})

	t.Run("chain applies in order", func(t *testing.T) {
		assert.Equal(t, "02807", ApplyChain(" 02807 ", "trim", "digits_only", "nzip"))
	})
}
