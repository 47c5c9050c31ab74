package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCoinPromptText_Uppercases(t *testing.T) {
	text, err := addCoinPromptText(" btc ")
	require.NoError(t, err)
	assert.Equal(t, "Please add BTC to my watchlist and show me its current price.", text)
}

func TestRemoveCoinPromptText_Lowercases(t *testing.T) {
	text, err := removeCoinPromptText(" BTC ")
	require.NoError(t, err)
	assert.Equal(t, "Please remove btc from my watchlist.", text)
}

func TestPromptText_EmptySymbol(t *testing.T) {
	_, err := addCoinPromptText("  ")
	assert.Error(t, err)

	_, err = removeCoinPromptText("")
	assert.Error(t, err)
}
