package soc

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type ElementKind int

const (
	// ElementRow is a <tr> and the cells it contains.
	ElementRow ElementKind = iota
	// ElementCell is a <td>/<th> that was never wrapped in a row.
	ElementCell
	// ElementBoundary is anything that ends a run of loose cells: the end of a
	// table or of the document.
	ElementBoundary
)

func (k ElementKind) String() string {
	switch k {
	case ElementRow:
		return "row"
	case ElementCell:
		return "cell"
	case ElementBoundary:
		return "boundary"
	}
	return "unknown"
}

// Element is one structural piece of a schedule page in document order. Cells
// holds the raw text of each cell, a loose cell has exactly one.
type Element struct {
	Kind  ElementKind
	Cells []string
}

// Scan tokenizes a schedule page without building a DOM. A DOM parser would
// wrap cells that are missing their <tr> into an implied row, which loses the
// distinction the repair pass relies on, so rows and loose cells are tracked
// by hand here.
func Scan(r io.Reader) ([]Element, error) {
	s := scanner{}
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			err := z.Err()
			if errors.Is(err, io.EOF) {
				s.boundary()
				return s.out, nil
			}
			return nil, err
		case html.TextToken:
			if s.inCell {
				s.text.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			s.startTag(atom.Lookup(name), tt == html.SelfClosingTagToken)
		case html.EndTagToken:
			name, _ := z.TagName()
			s.endTag(atom.Lookup(name))
		}
	}
}

type scanner struct {
	out    []Element
	inRow  bool
	inCell bool
	row    []string
	text   bytes.Buffer
}

func (s *scanner) closeCell() {
	if !s.inCell {
		return
	}
	s.inCell = false
	cell := s.text.String()
	s.text.Reset()
	if s.inRow {
		s.row = append(s.row, cell)
		return
	}
	s.out = append(s.out, Element{Kind: ElementCell, Cells: []string{cell}})
}

func (s *scanner) closeRow() {
	s.closeCell()
	if !s.inRow {
		return
	}
	s.inRow = false
	s.out = append(s.out, Element{Kind: ElementRow, Cells: s.row})
	s.row = nil
}

func (s *scanner) boundary() {
	s.closeRow()
	if len(s.out) > 0 && s.out[len(s.out)-1].Kind == ElementBoundary {
		return
	}
	s.out = append(s.out, Element{Kind: ElementBoundary})
}

func (s *scanner) startTag(tag atom.Atom, selfClosing bool) {
	switch tag {
	case atom.Tr:
		s.closeRow()
		s.inRow = true
	case atom.Td, atom.Th:
		s.closeCell()
		s.inCell = true
		if selfClosing {
			s.closeCell()
		}
	case atom.Table:
		s.boundary()
	case atom.Br:
		if s.inCell {
			s.text.WriteByte(' ')
		}
	}
}

func (s *scanner) endTag(tag atom.Atom) {
	switch tag {
	case atom.Td, atom.Th:
		s.closeCell()
	case atom.Tr:
		// a stray </tr> (the row it closes never had a start tag) does not
		// end a run of loose cells
		s.closeRow()
	case atom.Table, atom.Body, atom.Html:
		s.boundary()
	case atom.Br:
		if s.inCell {
			s.text.WriteByte(' ')
		}
	}
}

// RowCount returns the number of row elements.
func RowCount(elements []Element) int {
	count := 0
	for _, el := range elements {
		if el.Kind == ElementRow {
			count++
		}
	}
	return count
}

// SkipRows drops every element up to and including the n-th row, the page
// starts with an empty row and the column header.
func SkipRows(elements []Element, n int) []Element {
	if n <= 0 {
		return elements
	}
	seen := 0
	for i, el := range elements {
		if el.Kind != ElementRow {
			continue
		}
		seen++
		if seen == n {
			return elements[i+1:]
		}
	}
	return nil
}

func (e Element) String() string {
	if e.Kind == ElementBoundary {
		return "<boundary>"
	}
	return e.Kind.String() + "[" + strings.Join(e.Cells, "|") + "]"
}
