package types

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	t.Run("parses a whole amount", func(t *testing.T) {
		wei, err := ParseEther("2")

		require.NoError(t, err)
		assert.Equal(t, "2000000000000000000", wei.String())
	})

	t.Run("parses a fractional amount", func(t *testing.T) {
		wei, err := ParseEther("1.5")

		require.NoError(t, err)
		assert.Equal(t, "1500000000000000000", wei.String())
	})

	t.Run("parses an amount without a whole part", func(t *testing.T) {
		wei, err := ParseEther(".25")

		require.NoError(t, err)
		assert.Equal(t, "250000000000000000", wei.String())
	})

	t.Run("parses the smallest representable amount", func(t *testing.T) {
		wei, err := ParseEther("0.000000000000000001")

		require.NoError(t, err)
		assert.Equal(t, "1", wei.String())
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseEther("")

		assert.Error(t, err)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		for _, amount := range []string{"-1", "-0.5", "-0", "1.-5"} {
			_, err := ParseEther(amount)
			assert.Error(t, err, "amount %q", amount)
		}
	})

	t.Run("rejects more than 18 fractional digits", func(t *testing.T) {
		_, err := ParseEther("0." + strings.Repeat("1", 19))

		assert.Error(t, err)
	})

	t.Run("rejects non-numeric input", func(t *testing.T) {
		_, err := ParseEther("1.5x")

		assert.Error(t, err)
	})
}

func TestFormatEther(t *testing.T) {
	t.Run("formats a whole amount without fraction", func(t *testing.T) {
		wei, ok := new(big.Int).SetString("10000000000000000000", 10)
		require.True(t, ok)

		assert.Equal(t, "10", FormatEther(wei))
	})

	t.Run("trims trailing zeros from the fraction", func(t *testing.T) {
		wei, ok := new(big.Int).SetString("1500000000000000000", 10)
		require.True(t, ok)

		assert.Equal(t, "1.5", FormatEther(wei))
	})

	t.Run("keeps small fractions", func(t *testing.T) {
		assert.Equal(t, "0.000001", FormatEther(big.NewInt(1_000_000_000_000)))
	})

	t.Run("formats zero and nil as 0", func(t *testing.T) {
		assert.Equal(t, "0", FormatEther(big.NewInt(0)))
		assert.Equal(t, "0", FormatEther(nil))
	})
}

func TestEtherRoundTrip(t *testing.T) {
	t.Run("parse and format are inverse for canonical amounts", func(t *testing.T) {
		for _, amount := range []string{"1", "1.5", "0.000001", "123456.789"} {
			wei, err := ParseEther(amount)
			require.NoError(t, err)
			assert.Equal(t, amount, FormatEther(wei))
		}
	})
}
