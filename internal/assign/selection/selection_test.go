package selection

import (
	"testing"

	"autoassign-worker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectTop(t *testing.T) {
	t.Run("returns rank one vendor", func(t *testing.T) {
		ranking := map[string]models.VendorCandidate{
			"1": {VendorID: "V-100", Name: "Best Plumbing"},
			"2": {VendorID: "V-200", Name: "Second Plumbing"},
		}

		vendor, ok := SelectTop(ranking)
		require.True(t, ok)
		assert.Equal(t, "V-100", vendor.VendorID)
	})

	t.Run("nil map", func(t *testing.T) {
		vendor, ok := SelectTop(nil)
		assert.False(t, ok)
		assert.Nil(t, vendor)
	})

	t.Run("empty map", func(t *testing.T) {
		vendor, ok := SelectTop(map[string]models.VendorCandidate{})
		assert.False(t, ok)
		assert.Nil(t, vendor)
	})

	t.Run("missing top rank", func(t *testing.T) {
		ranking := map[string]models.VendorCandidate{
			"2": {VendorID: "V-200"},
			"3": {VendorID: "V-300"},
		}

		vendor, ok := SelectTop(ranking)
		assert.False(t, ok)
		assert.Nil(t, vendor)
	})
}
