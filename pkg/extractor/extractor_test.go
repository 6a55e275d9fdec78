package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() map[string]any {
	return map[string]any{
		"owner": map[string]any{
			"name": "SMITH, JOHN",
			"mailing": map[string]any{
				"street": "123 CORN NECK RD",
			},
		},
		"parcels": []any{
			map[string]any{"plat": "12", "lot": float64(4)},
			map[string]any{"plat": "12", "lot": float64(5)},
		},
		"exempt": true,
	}
}

func TestExtract(t *testing.T) {
	e := New()

	t.Run("nested path", func(t *testing.T) {
		v, err := e.Extract(sampleRecord(), "owner.mailing.street")
		require.NoError(t, err)
		assert.Equal(t, "123 CORN NECK RD", v)
	})

	t.Run("array index", func(t *testing.T) {
		v, err := e.Extract(sampleRecord(), "parcels[1].plat")
		require.NoError(t, err)
		assert.Equal(t, "12", v)
	})

	t.Run("empty path returns the record", func(t *testing.T) {
		data := sampleRecord()
		v, err := e.Extract(data, "")
		require.NoError(t, err)
		assert.Equal(t, data, v)
	})

	t.Run("missing segment yields nil without error", func(t *testing.T) {
		v, err := e.Extract(sampleRecord(), "owner.phone.home")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("index out of range yields nil", func(t *testing.T) {
		v, err := e.Extract(sampleRecord(), "parcels[9].plat")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("indexing a non-array yields nil", func(t *testing.T) {
		v, err := e.Extract(sampleRecord(), "owner[0]")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("malformed segment is an error", func(t *testing.T) {
		_, err := e.Extract(sampleRecord(), "parcels[x].plat")
		assert.Error(t, err)

		_, err = e.Extract(sampleRecord(), "parcels[0.plat")
		assert.Error(t, err)
	})
}

func TestExtractString(t *testing.T) {
	e := New()

	t.Run("string value", func(t *testing.T) {
		s, err := e.ExtractString(sampleRecord(), "owner.name")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "SMITH, JOHN", *s)
	})

	t.Run("numbers render without a trailing fraction", func(t *testing.T) {
		s, err := e.ExtractString(sampleRecord(), "parcels[0].lot")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "4", *s)
	})

	t.Run("booleans render as text", func(t *testing.T) {
		s, err := e.ExtractString(sampleRecord(), "exempt")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "true", *s)
	})

	t.Run("missing value is nil", func(t *testing.T) {
		s, err := e.ExtractString(sampleRecord(), "owner.phone")
		require.NoError(t, err)
		assert.Nil(t, s)
	})
}
