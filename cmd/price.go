package cmd

import (
	"lending/core"
	"lending/internal/compound"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "price quotes",
}

var setPriceCmd = &cobra.Command{
	Use:   "set <reserve> <price> <threshold>",
	Short: "save a price quote of a reserve, the threshold is in bps",
	Args:  cobra.ExactArgs(3),
	Example: heredoc.Doc(`
		$lending price set usdc 1 8500
		$lending price set sol 150 8000
	`),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		price, err := cast.ToUint64E(args[1])
		if err != nil || price == 0 {
			cmd.PrintErrln("invalid price", args[1])
			return
		}

		threshold, err := cast.ToUint64E(args[2])
		if err != nil || threshold > core.BasisPoints {
			cmd.PrintErrln("invalid threshold", args[2])
			return
		}

		database := provideDatabase()
		defer database.Close()

		info := core.PriceInfo{Price: price, LiquidationThreshold: threshold}
		if err := providePriceStore(database).Save(ctx, args[0], info, compound.Now()); err != nil {
			cmd.PrintErrln("save price:", err)
			return
		}

		cmd.Println("saved", args[0], price)
	},
}

func init() {
	rootCmd.AddCommand(priceCmd)
	priceCmd.AddCommand(setPriceCmd)
}
