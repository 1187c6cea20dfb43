package commands

import (
	"course-api/cmd/course-api/utils"
	"course-api/lib/scrapers/fce"
	"course-api/lib/serviceutil"
	"course-api/lib/telemetry"

	"github.com/spf13/cobra"
)

var fcesOut *string

func init() {
	fcesOut = fcesCmd.Flags().String("out", "", "The file to write the evaluations to, defaults to stdout.")
	rootCmd.AddCommand(fcesCmd)
}

var fcesCmd = &cobra.Command{
	Use:   "fces <export.csv|export.xml> [--out out.json]",
	Short: "Parse a faculty course evaluation export.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := fce.ParseFile(cmd.Context(), args[0], telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("parse evaluations", err)
		}
		err = utils.WriteJSON(*fcesOut, records)
		if err != nil {
			serviceutil.Fatal("write evaluations", err)
		}
	},
}
