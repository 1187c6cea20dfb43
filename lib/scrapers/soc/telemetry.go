package soc

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("courseapi.lib.scrapers.soc")

const (
	report_repair_loose_cells   = "repair.loose-cells"
	report_repair_orphan        = "repair.orphan-row"
	report_classify_row         = "classify.row"
	report_builder_context      = "builder.missing-context"
	report_parse_semester       = "parse.semester"
	report_client_fetch         = "client.fetch-schedule"
	report_count_rows_dropped   = "parse.rows-dropped"
	report_count_rows_processed = "parse.rows-processed"
)
