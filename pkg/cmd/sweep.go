package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/api"
	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/storage"
)

var (
	sweepDryRun bool

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "remove cover and pdf files no ebook references",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *configs.GetConfig()
			if cmd.Flags().Changed("dry-run") {
				cfg.Sweep.DryRun = sweepDryRun
			}

			mgr, err := storage.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}
			defer mgr.Close()

			res, err := api.NewServices(&cfg, mgr).Sweeper.Run(cmd.Context())
			if err != nil {
				return err
			}

			verb := "removed"
			if res.DryRun {
				verb = "would remove"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scanned %d, %s %d, failed %d\n", res.Scanned, verb, len(res.Removed), res.Failed)

			for _, ref := range res.Removed {
				fmt.Fprintln(out, "   - "+ref)
			}

			return nil
		},
	}
)

// registerSweepCommands 注册孤儿文件清理命令.
func registerSweepCommands() {
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "only list orphan files")
	rootCmd.AddCommand(sweepCmd)
}
