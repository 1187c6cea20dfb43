package soc

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"course-api/lib/htmlutil"
	"course-api/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultHeaderRows is the number of rows before the first department: an empty
// row and the column header.
const DefaultHeaderRows = 2

type ParseOptions struct {
	// HeaderRows is the number of leading rows to skip, DefaultHeaderRows when 0.
	HeaderRows int
}

// Parse reconstructs the schedule table of a Schedule Of Classes page.
func Parse(ctx context.Context, page []byte, opts ParseOptions, tel telemetry.API) (Schedule, error) {
	ctx, span := tracer.Start(ctx, "Parse")
	defer span.End()

	headerRows := opts.HeaderRows
	if headerRows <= 0 {
		headerRows = DefaultHeaderRows
	}

	semester, err := parseSemester(page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read semester")
		return Schedule{}, err
	}
	if semester == "" {
		tel.ReportWarning(report_parse_semester, "no semester label on page")
	}

	elements, err := Scan(bytes.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to scan page")
		return Schedule{}, fmt.Errorf("scan schedule page: %w", err)
	}
	elements = SkipRows(elements, headerRows)

	rows := Repair(elements, tel)
	departments, err := Build(rows, tel)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build schedule")
		return Schedule{}, err
	}

	span.SetAttributes(
		attribute.String("semester", semester),
		attribute.Int("rows", len(rows)),
		attribute.Int("departments", len(departments)),
	)
	tel.ReportDebug("parsed schedule", "semester", semester, "rows", len(rows))

	return Schedule{
		Semester:    semester,
		Departments: departments,
	}, nil
}

// parseSemester reads the second bold label of the page, "Semester: Fall 2015".
func parseSemester(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse schedule page: %w", err)
	}
	labels := doc.Find("b")
	if labels.Length() < 2 {
		return "", nil
	}
	text := htmlutil.CleanText(labels.Eq(1).Text())
	text = strings.TrimPrefix(text, "Semester:")
	return strings.TrimSpace(text), nil
}
