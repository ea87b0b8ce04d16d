package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nmoreau/tradecore/broker"
	"github.com/nmoreau/tradecore/config"
)

func newListCmd() *cobra.Command {
	var assetClass string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tradable assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			assets, err := broker.NewAlpaca(creds).ListAssets(assetClass)
			if err != nil {
				return err
			}
			for _, a := range assets {
				fmt.Printf("%-10s %-8s %-10s %s\n", a.Symbol, a.Exchange, a.Class, a.Name)
			}
			fmt.Printf("%d assets\n", len(assets))
			return nil
		},
	}
	cmd.Flags().StringVar(&assetClass, "asset-class", "us_equity", "asset class (us_equity|crypto)")
	return cmd
}
