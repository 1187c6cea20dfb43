package commands

import (
	"log/slog"

	"course-api/cmd/course-api/globals"
	"course-api/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(purgeCacheCmd)
}

var purgeCacheCmd = &cobra.Command{
	Use:   "purge-cache",
	Short: "Remove expired pages from the page cache.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		purged, err := globals.Get(ctx).Service.PurgeCache(ctx)
		if err != nil {
			serviceutil.Fatal("purge cache", err)
		}
		slog.InfoContext(ctx, "purged page cache", "pages", purged)
	},
}
