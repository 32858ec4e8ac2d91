package cmd

import (
	"encoding/json"

	"lending/handler/views"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "print rates and indices of every reserve",
	Example: heredoc.Doc(`
		$lending rates
		$lending rates --config ./config.yaml
	`),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		reserves, err := provideReserveStore(database).All(ctx)
		if err != nil {
			cmd.PrintErrln("list reserves:", err)
			return
		}

		for _, r := range reserves {
			view, err := views.ReserveView(r)
			if err != nil {
				cmd.PrintErrln(r.ID, err)
				continue
			}

			data, _ := json.MarshalIndent(view, "", "  ")
			cmd.Println(string(data))
		}
	},
}

func init() {
	rootCmd.AddCommand(ratesCmd)
}
