package commands

import (
	"course-api/cmd/course-api/globals"
	"course-api/cmd/course-api/utils"
	"course-api/lib/scrapers/soc"
	"course-api/lib/serviceutil"

	"github.com/spf13/cobra"
)

var scheduleFile *string
var scheduleOut *string

func init() {
	scheduleFile = scheduleCmd.Flags().String("file", "", "Parse a saved schedule page instead of fetching it.")
	scheduleOut = scheduleCmd.Flags().String("out", "", "The file to write the schedule to, defaults to stdout.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <S|M1|M2|F> [--file page.htm] [--out out.json]",
	Short: "Fetch and parse the Schedule Of Classes of a quarter.",
	Args:  cobra.RangeArgs(0, 1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := globals.Get(ctx).Service

		var (
			schedule soc.Schedule
			err      error
		)
		if *scheduleFile != "" {
			schedule, err = service.ScheduleFromFile(ctx, *scheduleFile)
		} else {
			if len(args) == 0 {
				serviceutil.Fatal("parse arguments", soc.ErrInvalidQuarter)
			}
			quarter, perr := soc.ParseQuarter(args[0])
			if perr != nil {
				serviceutil.Fatal("parse quarter", perr)
			}
			schedule, err = service.Schedule(ctx, quarter)
		}
		if err != nil {
			serviceutil.Fatal("get schedule", err)
		}

		err = utils.WriteJSON(*scheduleOut, schedule)
		if err != nil {
			serviceutil.Fatal("write schedule", err)
		}
	},
}
