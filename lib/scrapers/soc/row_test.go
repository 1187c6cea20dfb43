package soc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	el := Element{
		Kind:  ElementRow,
		Cells: []string{"15122", "  ", "", "\n\tLec 1 ", " ", "Pittsburgh,\n Pennsylvania"},
	}
	row := Tokenize(el)

	require.Len(t, row, len(el.Cells))
	require.Equal(t, "15122", row.Field(0))
	require.Nil(t, row[1])
	require.Nil(t, row[2])
	require.Equal(t, "Lec 1", row.Field(3))
	require.Nil(t, row[4])
	require.Equal(t, "Pittsburgh, Pennsylvania", row.Field(5))
}

func TestTokenizeEmptyRow(t *testing.T) {
	row := Tokenize(Element{Kind: ElementRow})
	require.Len(t, row, 0)
	require.False(t, row.Present(0))
	require.Equal(t, "", row.Field(3))
}

func TestRowPad(t *testing.T) {
	row := NewRow("Computer Science").Pad(Width)
	require.Len(t, row, Width)
	require.True(t, row.Present(colNumber))
	require.True(t, row.nonePresent(colTitle))

	wide := NewRow("1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11")
	require.Len(t, wide.Pad(Width), 11)
}

func TestRowString(t *testing.T) {
	require.Equal(t, "[15122, , 10.0]", NewRow("15122", " ", "10.0").String())
}
