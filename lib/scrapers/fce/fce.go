// Package fce reads faculty course evaluation exports. The evaluation portal
// exports either csv or an MSXML spreadsheet, the latter is preferred since
// the csv export is known to lose its first lines.
package fce

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"course-api/lib/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("courseapi.lib.scrapers.fce")

const (
	report_parse_number = "parse.number"
	report_parse_row    = "parse.row"
)

// headerLabel is the first cell of every header row, headers may repeat
// within an export and replace the columns that came before.
const headerLabel = "Semester"

// Record is one evaluated section keyed by column name.
type Record map[string]any

// Column returns the value of a column as a string.
func (r Record) Column(name string) string {
	v, ok := r[name]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// ParseFile parses an export, picking the format by file extension.
func ParseFile(ctx context.Context, path string, tel telemetry.API) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "ParseFile")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open export")
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ParseCSV(ctx, f, tel)
	case ".xml", ".msxml", ".xls":
		return ParseMSXML(ctx, f, tel)
	}
	return nil, fmt.Errorf("unknown export format: %s", path)
}

func newRecord(columns []string, values []any) Record {
	record := Record{}
	for i, name := range columns {
		if name == "" || i >= len(values) {
			continue
		}
		record[name] = values[i]
	}
	return record
}
