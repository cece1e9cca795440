package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/app"
	"github.com/yeisme/ebookshelf/pkg/configs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP server and scheduled jobs",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, configs.GetConfig())
	if err != nil {
		return err
	}

	return a.Run(ctx)
}

// registerServeCommands 注册服务启动命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
