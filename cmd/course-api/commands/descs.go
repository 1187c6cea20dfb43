package commands

import (
	"log/slog"

	"course-api/cmd/course-api/globals"
	"course-api/cmd/course-api/utils"
	"course-api/lib/serviceutil"

	"github.com/spf13/cobra"
)

var descsSources *string
var descsOut *string

func init() {
	descsSources = descsCmd.Flags().String("sources", "", "A file listing catalog page urls, one per line.")
	descsOut = descsCmd.Flags().String("out", "", "The file to write the descriptions to, defaults to stdout.")
	rootCmd.AddCommand(descsCmd)
}

var descsCmd = &cobra.Command{
	Use:   "descs [--sources list.txt] [--out out.json]",
	Short: "Fetch and parse course descriptions from the course catalog.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := globals.Get(ctx).Service

		descs, err := service.Descriptions(ctx, *descsSources)
		if err != nil {
			if len(descs) == 0 {
				serviceutil.Fatal("get descriptions", err)
			}
			slog.WarnContext(ctx, "some catalog pages failed", "err", err)
		}

		err = utils.WriteJSON(*descsOut, descs)
		if err != nil {
			serviceutil.Fatal("write descriptions", err)
		}
	},
}
