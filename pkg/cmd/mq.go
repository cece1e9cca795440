package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/configs"
	mq "github.com/yeisme/ebookshelf/pkg/internal/storage/mq"
	"github.com/yeisme/ebookshelf/pkg/queue"
)

var (
	mqCmd = &cobra.Command{
		Use:   "mq",
		Short: "Message queue related commands",
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list registered mq types and ebook event topics",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			current := configs.GetConfig().MQ.Type

			fmt.Fprintln(out, "Registered mq types:")

			for _, t := range mq.RegisteredTypes() {
				mark := " "
				if t == current {
					mark = "*"
				}

				fmt.Fprintf(out, " %s - %s\n", mark, t)
			}

			fmt.Fprintln(out, "Topics:")

			for _, topic := range queue.AllTopics() {
				fmt.Fprintln(out, "   - "+topic)
			}
		},
	}

	// 连接当前配置的 MQ，用于部署前检查.
	mqPingCmd = &cobra.Command{
		Use:   "ping",
		Short: "connect to the configured mq backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configs.GetConfig()

			client, err := mq.New(cmd.Context(), cfg.MQ, configs.MetricsConfig{})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "mq %s ok\n", client.Type())

			return client.Close()
		},
	}
)

func registerMQCommands() {
	rootCmd.AddCommand(mqCmd)
	mqCmd.AddCommand(mqListCmd, mqPingCmd)
}
