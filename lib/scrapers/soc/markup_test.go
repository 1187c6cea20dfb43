package soc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	page := `
	<table>
	<TR><TD>Computer Science</TD></TR>
	<TD>15122</TD><TD>Principles <i>of</i> Imperative</TD><TD>10.0</TD>
	</TR>
	<tr><td></td><td>A<br>B</td><td/></tr>
	</table>
	<table><tr><td>x</td></table>`

	elements, err := Scan(strings.NewReader(page))
	require.NoError(t, err)

	expected := []Element{
		{Kind: ElementBoundary},
		{Kind: ElementRow, Cells: []string{"Computer Science"}},
		{Kind: ElementCell, Cells: []string{"15122"}},
		{Kind: ElementCell, Cells: []string{"Principles of Imperative"}},
		{Kind: ElementCell, Cells: []string{"10.0"}},
		{Kind: ElementRow, Cells: []string{"", "A B", ""}},
		{Kind: ElementBoundary},
		{Kind: ElementRow, Cells: []string{"x"}},
		{Kind: ElementBoundary},
	}
	diff := cmp.Diff(expected, elements)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestScanUnclosedCells(t *testing.T) {
	elements, err := Scan(strings.NewReader(`<tr><td>a<td>b<tr><td>c`))
	require.NoError(t, err)

	diff := cmp.Diff([]Element{
		{Kind: ElementRow, Cells: []string{"a", "b"}},
		{Kind: ElementRow, Cells: []string{"c"}},
		{Kind: ElementBoundary},
	}, elements)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestSkipRows(t *testing.T) {
	elements := []Element{
		{Kind: ElementBoundary},
		{Kind: ElementRow, Cells: []string{""}},
		{Kind: ElementRow, Cells: []string{"Course", "Title"}},
		{Kind: ElementRow, Cells: []string{"Computer Science"}},
		{Kind: ElementCell, Cells: []string{"15122"}},
	}

	require.Equal(t, 3, RowCount(elements))
	require.Equal(t, elements, SkipRows(elements, 0))
	require.Equal(t, elements[3:], SkipRows(elements, 2))
	require.Empty(t, SkipRows(elements, 5))
}
