package fce

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"course-api/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ParseCSV reads a csv export. Every value is kept as a string.
func ParseCSV(ctx context.Context, r io.Reader, tel telemetry.API) ([]Record, error) {
	_, span := tracer.Start(ctx, "ParseCSV")
	defer span.End()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var columns []string
	var records []Record
	for {
		line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read csv")
			return nil, err
		}
		if len(line) == 0 {
			continue
		}

		if strings.TrimSpace(line[0]) == headerLabel {
			columns = make([]string, len(line))
			for i, name := range line {
				columns[i] = strings.TrimSpace(name)
			}
			continue
		}
		if columns == nil {
			tel.ReportWarning(report_parse_row, "row before header", line)
			continue
		}

		values := make([]any, len(line))
		for i, v := range line {
			values[i] = v
		}
		records = append(records, newRecord(columns, values))
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
