package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCell_JSON(t *testing.T) {
	// Given: a row with one stone of each colour
	row := [3]Cell{CellEmpty, CellBlack, CellWhite}

	// When: the row is marshaled
	data, err := json.Marshal(row)
	require.NoError(t, err)

	// Then: empty cells serialize as null, stones as their colour
	require.JSONEq(t, `[null, "black", "white"]`, string(data))

	// When: the payload is read back
	var decoded [3]Cell
	require.NoError(t, json.Unmarshal(data, &decoded))

	// Then: the round trip preserves the cells
	require.Equal(t, row, decoded)
}
