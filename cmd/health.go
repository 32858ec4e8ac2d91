package cmd

import (
	"encoding/json"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health <owner>",
	Short: "print the valuation and health factor of a position",
	Args:  cobra.ExactArgs(1),
	Example: heredoc.Doc(`
		$lending health 8017d200-7870-4b82-b53f-74bae1d2dad7
	`),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		s := provideServices(database)
		l, err := s.Operations.Load(ctx, args[0])
		if err != nil {
			cmd.PrintErrln("load position:", err)
			return
		}

		snapshot, err := l.Snapshot()
		if err != nil {
			cmd.PrintErrln("price snapshot:", err)
			return
		}

		valuation, err := s.Risk.Valuation(ctx, l.Position, snapshot)
		if err != nil {
			cmd.PrintErrln("valuation:", err)
			return
		}

		data, _ := json.MarshalIndent(valuation, "", "  ")
		cmd.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
