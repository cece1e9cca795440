// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/log"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           "ebookshelf",
		Short:         "An ebook catalog with a public listing and an admin API",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			if debug {
				configs.GetConfig().Server.Debug = true
			}

			log.Init()

			return nil
		},
		// 不带子命令时启动服务
		RunE: runServe,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")

	registerServeCommands()
	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerSweepCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
