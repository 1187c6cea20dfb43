package catalog

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"course-api/lib/htmlutil"
	"course-api/lib/scrapers/soc"
	"course-api/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
)

var tracer = otel.Tracer("courseapi.lib.scrapers.catalog")

const (
	report_parse_courseblock = "parse.courseblock"
	report_parse_units       = "parse.units"
	report_client_fetch      = "client.fetch-all"
)

// a units/semester line longer than this is description text
const maxInfoLength = 100

// Description is one course block of a catalog page.
type Description struct {
	Number    string   `json:"num"`
	Name      string   `json:"name"`
	Units     float64  `json:"units"`
	Semesters []string `json:"semester"`
	Desc      string   `json:"desc"`
	Prereqs   string   `json:"prereqs"`
	Coreqs    string   `json:"coreqs"`
}

// Key is the course number as NN-NNN.
func (d Description) Key() string {
	return soc.FormatNumber(d.Number)
}

var nonDigits = regexp.MustCompile(`\D`)
var nonNumber = regexp.MustCompile(`[^0-9.]`)

// ParseCatalog extracts every course block of a catalog page. Blocks that
// cannot be read are reported and skipped.
func ParseCatalog(ctx context.Context, r io.Reader, tel telemetry.API) ([]Description, error) {
	_, span := tracer.Start(ctx, "ParseCatalog")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse catalog page")
		return nil, err
	}

	var out []Description
	doc.Find("dl.courseblock").Each(func(i int, block *goquery.Selection) {
		desc, err := parseBlock(block, tel)
		if err != nil {
			tel.ReportWarning(report_parse_courseblock, err, i)
			return
		}
		out = append(out, desc)
	})

	span.SetAttributes(attribute.Int("courses", len(out)))
	return out, nil
}

func parseBlock(block *goquery.Selection, tel telemetry.API) (Description, error) {
	title := htmlutil.CleanText(block.Find("dt.keepwithnext").First().Text())
	number, name, ok := strings.Cut(title, " ")
	if !ok {
		return Description{}, fmt.Errorf("title %q has no name", title)
	}
	number = nonDigits.ReplaceAllString(number, "")
	if number == "" {
		return Description{}, fmt.Errorf("title %q has no course number", title)
	}

	dd := block.Find("dd").First()
	if dd.Length() == 0 {
		return Description{}, fmt.Errorf("course %s has no description", number)
	}
	blocks := splitOnBreaks(dd.Nodes[0])

	desc := Description{
		Number:    number,
		Name:      name,
		Semesters: []string{"F", "S", "M"},
	}
	if len(blocks) > 0 && len(blocks[0]) < maxInfoLength {
		desc.Units, desc.Semesters = parseInfoLine(blocks[0], tel)
		blocks = blocks[1:]
	}
	desc.Desc, desc.Prereqs, desc.Coreqs = parseRequisites(blocks)
	return desc, nil
}

// splitOnBreaks returns the text of node's children in runs separated by <br>.
func splitOnBreaks(node *html.Node) []string {
	var blocks []string
	var current strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "br" {
			blocks = append(blocks, htmlutil.CleanText(current.String()))
			current.Reset()
			continue
		}
		current.WriteString(htmlutil.GetText(child))
	}
	return append(blocks, htmlutil.CleanText(current.String()))
}

// parseInfoLine reads lines like "Fall and Spring: 9 units", "12 units" or "Fall".
func parseInfoLine(line string, tel telemetry.API) (float64, []string) {
	semesterText, unitsText, hasUnits := strings.Cut(line, ":")
	if !hasUnits && strings.Contains(line, "unit") {
		semesterText = "All Semesters"
		unitsText = line
		hasUnits = true
	}

	var units float64
	if hasUnits {
		var err error
		units, err = strconv.ParseFloat(nonNumber.ReplaceAllString(unitsText, ""), 64)
		if err != nil {
			tel.ReportWarning(report_parse_units, line)
			units = 0
		}
	}

	semesters := []string{}
	if strings.Contains(semesterText, "Fall") {
		semesters = append(semesters, "F")
	}
	if strings.Contains(semesterText, "Spring") {
		semesters = append(semesters, "S")
	}
	if strings.Contains(semesterText, "Summer") {
		semesters = append(semesters, "M")
	}
	if strings.Contains(semesterText, "All") {
		semesters = []string{"F", "S", "M"}
	}
	return units, semesters
}

var requisitePrefixes = []struct {
	prefix string
	coreq  bool
}{
	{prefix: "Prerequisites:"},
	{prefix: "Prerequisite:"},
	{prefix: "Corequisites:", coreq: true},
	{prefix: "Corequisite:", coreq: true},
}

func parseRequisites(blocks []string) (desc, prereqs, coreqs string) {
	var text []string
	for _, block := range blocks {
		matched := false
		for _, p := range requisitePrefixes {
			rest, ok := strings.CutPrefix(block, p.prefix)
			if !ok {
				continue
			}
			if p.coreq {
				coreqs = strings.TrimSpace(rest)
			} else {
				prereqs = strings.TrimSpace(rest)
			}
			matched = true
			break
		}
		if !matched && block != "" {
			text = append(text, block)
		}
	}
	return strings.Join(text, " "), prereqs, coreqs
}
