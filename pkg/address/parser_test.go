package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullAddress(t *testing.T) {
	addr := Parse("123 Corn Neck Road, New Shoreham RI 02807", "assessor")

	require.NotNil(t, addr.StreetNumber)
	assert.Equal(t, "123", addr.StreetNumber.Term)
	require.NotNil(t, addr.StreetName)
	assert.Equal(t, "CORN NECK", addr.StreetName.Term)
	require.NotNil(t, addr.StreetType)
	assert.Equal(t, "RD", addr.StreetType.Term)
	require.NotNil(t, addr.City)
	assert.Equal(t, "NEW SHOREHAM", addr.City.Term)
	require.NotNil(t, addr.State)
	assert.Equal(t, "RI", addr.State.Term)
	require.NotNil(t, addr.Zip)
	assert.Equal(t, "02807", addr.Zip.Term)
}

func TestParse_POBox(t *testing.T) {
	addr := Parse("PO Box 42, Block Island RI 02807", "donor")

	require.NotNil(t, addr.UnitType)
	assert.Equal(t, "PO BOX", addr.UnitType.Term)
	require.NotNil(t, addr.UnitNumber)
	assert.Equal(t, "42", addr.UnitNumber.Term)
	assert.Nil(t, addr.StreetName)
	require.NotNil(t, addr.City)
	assert.Equal(t, "BLOCK ISLAND", addr.City.Term)
	require.NotNil(t, addr.Zip)
	assert.Equal(t, "02807", addr.Zip.Term)
}

func TestParse_Units(t *testing.T) {
	t.Run("marker and number", func(t *testing.T) {
		addr := Parse("123A Main St Apt 4B", "assessor")

		require.NotNil(t, addr.StreetNumber)
		assert.Equal(t, "123A", addr.StreetNumber.Term)
		require.NotNil(t, addr.StreetType)
		assert.Equal(t, "ST", addr.StreetType.Term)
		require.NotNil(t, addr.UnitType)
		assert.Equal(t, "APT", addr.UnitType.Term)
		require.NotNil(t, addr.UnitNumber)
		assert.Equal(t, "4B", addr.UnitNumber.Term)
	})

	t.Run("hash form", func(t *testing.T) {
		addr := Parse("12 Ocean Ave #3", "assessor")

		require.NotNil(t, addr.UnitType)
		assert.Equal(t, "#", addr.UnitType.Term)
		require.NotNil(t, addr.UnitNumber)
		assert.Equal(t, "3", addr.UnitNumber.Term)
	})
}

func TestParse_Partials(t *testing.T) {
	t.Run("street only", func(t *testing.T) {
		addr := Parse("Corn Neck Rd", "assessor")

		assert.Nil(t, addr.StreetNumber)
		require.NotNil(t, addr.StreetName)
		assert.Equal(t, "CORN NECK", addr.StreetName.Term)
		require.NotNil(t, addr.StreetType)
		assert.Equal(t, "RD", addr.StreetType.Term)
		assert.Nil(t, addr.City)
	})

	t.Run("no state anchor means no city", func(t *testing.T) {
		// Without a state we cannot tell city words from street words.
		addr := Parse("123 Corn Neck Rd New Shoreham", "assessor")

		assert.Nil(t, addr.City)
		assert.Nil(t, addr.State)
	})

	t.Run("hyphenated range keeps the first number", func(t *testing.T) {
		addr := Parse("10-12 High St", "assessor")

		require.NotNil(t, addr.StreetNumber)
		assert.Equal(t, "10", addr.StreetNumber.Term)
	})

	t.Run("empty input", func(t *testing.T) {
		addr := Parse("   ", "assessor")
		assert.True(t, addr.IsEmpty())
	})
}

func TestParse_Provenance(t *testing.T) {
	addr := Parse("123 Main St", "assessor")
	require.NotNil(t, addr.StreetName)
	assert.Equal(t, "assessor", addr.StreetName.Source)
	assert.Equal(t, "raw_address", addr.StreetName.Field)
}
