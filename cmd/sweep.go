package cmd

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xiaot623/fmuweb/store"
)

var (
	sweepDir         string
	sweepMaxAgeHours int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete stale files from the upload directory",
	Long:  "Remove direct file entries of the upload directory whose last-modified time is older than the retention age. Best-effort; entries that cannot be removed are skipped.",
	Run: func(cmd *cobra.Command, args []string) {
		removed := store.Sweep(sweepDir, time.Duration(sweepMaxAgeHours)*time.Hour)
		logrus.Infof("Cleanup complete: removed %d old file(s)", removed)
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDir, "dir", "uploads", "Directory to sweep")
	sweepCmd.Flags().IntVar(&sweepMaxAgeHours, "max-age-hours", 24, "Retention age in hours")

	rootCmd.AddCommand(sweepCmd)
}
