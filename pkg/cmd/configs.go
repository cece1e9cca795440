package cmd

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/configs"
)

var (
	// config 子命令.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "config subcommands",
	}

	// 打印当前使用的配置文件路径.
	pathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the path of the current config file",
		Run: func(cmd *cobra.Command, args []string) {
			v := configs.GetViper()
			if v == nil || v.ConfigFileUsed() == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and EBOOKSHELF_* env only)")
				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), v.ConfigFileUsed())
		},
	}

	// 打印生效的配置，敏感字段被隐藏.
	debugCmd = &cobra.Command{
		Use:   "debug",
		Short: "print the effective config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			b, err := sonic.ConfigStd.MarshalIndent(configs.GetConfig().Redacted(), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}

	// 校验配置.
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "validate the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.GetConfig().Validate(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "config ok")

			return nil
		},
	}
)

// registerConfigsCommands 注册 CLI 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(pathCmd)
	configCmd.AddCommand(debugCmd)
	configCmd.AddCommand(validateCmd)

	rootCmd.AddCommand(configCmd)
}
