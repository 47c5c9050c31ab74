package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_PreservesTrailingZeros(t *testing.T) {
	// decimal.Decimal alone trims these to "49000" and "-2".
	for _, literal := range []string{"49000.0", "49000.00", "-2.0", "0.080"} {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(literal), &a))
		assert.Equal(t, literal, a.String())
	}
}

func TestAmount_DecodesInsideStruct(t *testing.T) {
	var doc struct {
		Price  Amount  `json:"price"`
		Change *Amount `json:"change"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price": 49000.0, "change": 1.230}`), &doc))

	assert.Equal(t, "49000.0", doc.Price.String())
	require.NotNil(t, doc.Change)
	assert.Equal(t, "1.230", doc.Change.String())
	assert.True(t, doc.Change.Equal(decimal.RequireFromString("1.23")), "arithmetic value ignores the rendering")
}

func TestAmount_QuotedNumber(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"100.50"`), &a))
	assert.Equal(t, "100.50", a.String())
}

func TestAmount_FallsBackToDecimalRendering(t *testing.T) {
	a := NewAmount(decimal.RequireFromString("1.5"))
	assert.Equal(t, "1.5", a.String())
}

func TestMustParseAmount(t *testing.T) {
	a := MustParseAmount("49000.0")
	assert.Equal(t, "49000.0", a.String())
	assert.True(t, a.Equal(decimal.NewFromInt(49000)))

	assert.Panics(t, func() { MustParseAmount("not a number") })
}
