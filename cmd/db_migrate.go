package cmd

import (
	"context"

	"lending/core"
	"lending/internal/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/spf13/cobra"
)

// command for migrating database
var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Aliases: []string{"setdb"},
	Short:   "migrate database tables and sync reserve parameters",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		if err := db.Migrate(database); err != nil {
			cmd.PrintErrln("migrate database error:", err)
			return
		}

		if err := syncReserves(ctx, database, provideReserveStore(database), cfg.Reserves); err != nil {
			cmd.PrintErrln("sync reserves error:", err)
			return
		}
	},
}

// syncReserves create missing reserves and apply the configured parameters to existing ones.
// Balances and indices are never touched.
func syncReserves(ctx context.Context, database core.ITx, reserves core.IReserveStore, configs []core.ReserveConfig) error {
	log := logger.FromContext(ctx)

	for _, c := range configs {
		if err := c.Validate(); err != nil {
			log.WithError(err).Errorf("invalid reserve %q", c.ID)
			return err
		}

		r, err := reserves.Find(ctx, c.ID)
		if err == core.ErrReserveNotFound {
			r = core.NewReserve(c.ID, compound.Now())
			c.Apply(r)
			if err := reserves.Save(ctx, r); err != nil {
				return err
			}

			log.Infof("reserve %s created", c.ID)
			continue
		}

		if err != nil {
			return err
		}

		c.Apply(r)
		if err := database.Tx(func(tx *db.DB) error {
			return reserves.Update(ctx, tx, r)
		}); err != nil {
			return err
		}

		log.Infof("reserve %s updated", c.ID)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
