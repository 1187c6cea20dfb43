package commands

import (
	"fmt"
	"sort"
	"strings"

	"course-api/cmd/course-api/globals"
	"course-api/cmd/course-api/utils"
	"course-api/lib/serviceutil"
	"course-api/services/courseapi"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showDepartment *string

func init() {
	showDepartment = showCmd.Flags().String("department", "", "Only show courses of this department.")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [semester] [--department name]",
	Short: "List stored runs, or the courses of the latest run of a semester (ex. \"Fall 2015\").",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := globals.Get(ctx).Service

		if len(args) == 0 {
			runs, err := service.Runs(ctx)
			if err != nil {
				serviceutil.Fatal("list runs", err)
			}
			t := utils.NewTable()
			t.AppendHeader(table.Row{"Semester", "Run date", "Courses"})
			for _, r := range runs {
				t.AppendRow(table.Row{r.Semester, r.RunDate, r.Courses})
			}
			t.Render()
			return
		}

		result, err := service.Show(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("show semester", err)
		}
		renderCourses(result, *showDepartment)
	},
}

func renderCourses(result courseapi.Result, department string) {
	keys := make([]string, 0, len(result.Courses))
	for key, record := range result.Courses {
		if department != "" && !strings.EqualFold(record.Department, department) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	t := utils.NewTable()
	t.SetTitle(fmt.Sprintf("%s (%s)", result.Semester, result.RunDate))
	t.AppendHeader(table.Row{"Course", "Name", "Department", "Units", "Lectures", "Sections", "Offered", "FCEs"})
	for _, key := range keys {
		record := result.Courses[key]
		units := "-"
		if record.Units != nil {
			units = fmt.Sprintf("%.1f", *record.Units)
		}
		sections := 0
		for _, lec := range record.Lectures {
			sections += len(lec.Sections)
		}
		t.AppendRow(table.Row{
			key,
			record.Name,
			record.Department,
			units,
			len(record.Lectures),
			sections,
			strings.Join(record.Semesters, ","),
			len(record.FCEs),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(keys)})
	t.Render()
}
