package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/configs"
	kv "github.com/yeisme/ebookshelf/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-Value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered kv types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")

			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	// 列出匹配的键，例如 `kv keys 'catalog:*'` 或 `kv keys 'session:revoked:*'`.
	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys in the configured kv store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}

			client, err := kv.NewKVClient(cmd.Context(), configs.GetConfig().KV)
			if err != nil {
				return err
			}
			defer client.Close()

			keys, err := client.Keys(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}
)

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvListCmd)
	kvCmd.AddCommand(kvKeysCmd)
}
