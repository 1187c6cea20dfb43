package fce

import (
	"context"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"unicode"

	"course-api/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type workbook struct {
	Worksheets []worksheet `xml:"Worksheet"`
}

type worksheet struct {
	Name  string `xml:"Name,attr"`
	Table struct {
		Rows []row `xml:"Row"`
	} `xml:"Table"`
}

type row struct {
	Cells []cell `xml:"Cell"`
}

type cell struct {
	// Index is 1-based and set when the cells before it were left out.
	Index int `xml:"Index,attr"`
	Data  struct {
		Type  string `xml:"Type,attr"`
		Value string `xml:",chardata"`
	} `xml:"Data"`
}

// ParseMSXML reads an XML spreadsheet export. Number cells become float64 in
// columns holding question ratings (their names start with a digit) and int
// everywhere else.
func ParseMSXML(ctx context.Context, r io.Reader, tel telemetry.API) ([]Record, error) {
	_, span := tracer.Start(ctx, "ParseMSXML")
	defer span.End()

	var book workbook
	err := xml.NewDecoder(r).Decode(&book)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode spreadsheet")
		return nil, err
	}

	var records []Record
	for _, sheet := range book.Worksheets {
		var columns []string
		for _, row := range sheet.Table.Rows {
			cells := row.spread()
			if len(cells) == 0 {
				continue
			}

			if cells[0] != nil && strings.TrimSpace(cells[0].Data.Value) == headerLabel {
				columns = make([]string, len(cells))
				for i, c := range cells {
					if c != nil {
						columns[i] = strings.TrimSpace(c.Data.Value)
					}
				}
				continue
			}
			if columns == nil {
				tel.ReportWarning(report_parse_row, "row before header", sheet.Name)
				continue
			}

			values := make([]any, len(cells))
			for i, c := range cells {
				if c == nil || i >= len(columns) {
					continue
				}
				values[i] = parseValue(columns[i], c, tel)
			}
			record := newRecord(columns, values)
			for name, v := range record {
				if v == nil {
					delete(record, name)
				}
			}
			records = append(records, record)
		}
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// spread places cells at their column, honoring ss:Index gaps.
func (r row) spread() []*cell {
	var out []*cell
	for i := range r.Cells {
		c := &r.Cells[i]
		if c.Index > len(out) {
			out = append(out, make([]*cell, c.Index-1-len(out))...)
		}
		out = append(out, c)
	}
	return out
}

func parseValue(column string, c *cell, tel telemetry.API) any {
	value := strings.TrimSpace(c.Data.Value)
	if c.Data.Type != "Number" {
		return value
	}

	isRating := column != "" && unicode.IsDigit(rune(column[0]))
	if !isRating {
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		tel.ReportWarning(report_parse_number, err, column)
		return value
	}
	return f
}
