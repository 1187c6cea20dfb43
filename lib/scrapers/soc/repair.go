package soc

import (
	"course-api/lib/telemetry"
)

type item struct {
	kind ElementKind
	row  Row
}

// Repair turns the scanned elements of a schedule table into rows that are
// each at least Width fields wide, fixing the defects the source page is known
// to have:
//
//  1. the first row after a department header is missing its <tr>, so its
//     cells show up loose after the header. They are gathered into a new row.
//  2. a course whose title spans two rows leaves an orphan row holding only the
//     number, title and units. Number and units move to the following row (its
//     title wins) and the orphan is removed.
//  3. rows holding nothing but a title are noise and are removed.
//  4. short rows are padded with empty fields.
//
// The elements are copied into a list owned by the pass and edited in place, so
// each repair sees the effect of the ones before it.
func Repair(elements []Element, tel telemetry.API) []Row {
	items := make([]item, len(elements))
	for i, el := range elements {
		items[i] = item{kind: el.Kind, row: Tokenize(el)}
	}

	i := 0
	for i < len(items) {
		if items[i].kind != ElementRow {
			if items[i].kind == ElementCell {
				tel.ReportWarning(report_repair_loose_cells, items[i].row.String())
			}
			i++
			continue
		}

		if isDepartmentRow(items[i].row) {
			items[i].row = items[i].row.Pad(Width)

			end := i + 1
			for end < len(items) && items[end].kind == ElementCell {
				end++
			}
			if end == i+1 {
				i++
				continue
			}

			var synthetic Row
			for _, loose := range items[i+1 : end] {
				synthetic = append(synthetic, loose.row...)
			}
			spliced := make([]item, 0, len(items)-(end-i-1)+1)
			spliced = append(spliced, items[:i+1]...)
			spliced = append(spliced, item{kind: ElementRow, row: synthetic.Pad(Width)})
			spliced = append(spliced, items[end:]...)
			items = spliced

			// the rest of the repairs apply to the new row
			i++
		}

		row := items[i].row
		switch {
		case isOrphanRow(row):
			next := nextRow(items, i+1)
			if next < 0 {
				tel.ReportWarning(report_repair_orphan, row.String())
			} else {
				target := items[next].row.Pad(colUnits + 1)
				target.set(colNumber, row[colNumber])
				target.set(colUnits, row[colUnits])
				items[next].row = target
			}
			items = append(items[:i], items[i+1:]...)
		case isNoiseRow(row):
			items = append(items[:i], items[i+1:]...)
		default:
			items[i].row = row.Pad(Width)
			i++
		}
	}

	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if it.kind == ElementRow {
			rows = append(rows, it.row)
		}
	}
	return rows
}

func nextRow(items []item, from int) int {
	for i := from; i < len(items); i++ {
		if items[i].kind == ElementRow {
			return i
		}
	}
	return -1
}

func isDepartmentRow(row Row) bool {
	return row.Present(colNumber) && !isNumeric(row.Field(colNumber))
}

// isOrphanRow matches a row holding only a course number, title and units.
func isOrphanRow(row Row) bool {
	return row.allPresent(colNumber, colLabel) &&
		isNumeric(row.Field(colNumber)) &&
		row.nonePresent(colLabel)
}

func isNoiseRow(row Row) bool {
	return !row.Present(colNumber) && row.Present(colTitle) && row.nonePresent(colUnits)
}
