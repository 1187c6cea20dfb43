package commands

import (
	"log/slog"

	"course-api/cmd/course-api/globals"
	"course-api/cmd/course-api/utils"
	"course-api/lib/scrapers/soc"
	"course-api/lib/serviceutil"
	"course-api/services/courseapi"

	"github.com/spf13/cobra"
)

var aggregateFile *string
var aggregateSources *string
var aggregateFces *string
var aggregateOut *string

func init() {
	aggregateFile = aggregateCmd.Flags().String("file", "", "Parse a saved schedule page instead of fetching it.")
	aggregateSources = aggregateCmd.Flags().String("sources", "", "A file listing catalog page urls, one per line.")
	aggregateFces = aggregateCmd.Flags().String("fces", "", "A faculty course evaluation export to include.")
	aggregateOut = aggregateCmd.Flags().String("out", "", "The file to write the result to, defaults to stdout.")
	rootCmd.AddCommand(aggregateCmd)
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <S|M1|M2|F> [--fces file] [--out out.json]",
	Short: "Combine the schedule, catalog descriptions and evaluations of a quarter and store the result.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := globals.Get(ctx).Service

		quarter, err := soc.ParseQuarter(args[0])
		if err != nil {
			serviceutil.Fatal("parse quarter", err)
		}

		result, err := service.Run(ctx, courseapi.RunRequest{
			Quarter:      quarter,
			ScheduleFile: *aggregateFile,
			SourcesFile:  *aggregateSources,
			FCEFile:      *aggregateFces,
		})
		if err != nil {
			if len(result.Courses) == 0 {
				serviceutil.Fatal("aggregate", err)
			}
			slog.WarnContext(ctx, "aggregated but failed to store the result", "err", err)
		}
		slog.InfoContext(ctx, "aggregated courses",
			"semester", result.Semester,
			"rundate", result.RunDate,
			"courses", len(result.Courses),
		)

		err = utils.WriteJSON(*aggregateOut, result)
		if err != nil {
			serviceutil.Fatal("write result", err)
		}
	},
}
