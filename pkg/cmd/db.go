package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/ebookshelf/pkg/configs"
	"github.com/yeisme/ebookshelf/pkg/internal/model"
	"github.com/yeisme/ebookshelf/pkg/internal/repository"
	"github.com/yeisme/ebookshelf/pkg/internal/storage/db"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered database types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered database types:")

			for _, dbType := range db.GetRegisteredDBTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(dbType))
			}
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the ebooks table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig().DB

			client, err := db.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(cmd.Context(), &model.Ebook{}); err != nil {
				return err
			}

			n, err := repository.NewEbookRepository(client.DB).Count(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database %q (%d ebooks)\n", cfg.GetDBType(), cfg.Database, n)

			return nil
		},
	}
)

// registerDBCommands 注册数据库相关命令.
func registerDBCommands() {
	rootCmd.AddCommand(dbCmd)

	dbCmd.AddCommand(dbListCmd)
	dbCmd.AddCommand(dbMigrateCmd)
}
