package cmd

import (
	"time"

	"lending/service/session"

	"github.com/asaskevich/govalidator"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <owner>",
	Short: "issue an access token for owner",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !govalidator.IsUUID(args[0]) {
			cmd.PrintErrln("owner must be an uuid")
			return
		}

		ttl, _ := cmd.Flags().GetDuration("ttl")
		token, err := session.Issue(cfg.Auth, args[0], ttl)
		if err != nil {
			cmd.PrintErrln("issue token:", err)
			return
		}

		cmd.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token ttl")
}
