package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fire-ai/valuation-cli/internal/comps"
	"github.com/fire-ai/valuation-cli/internal/pool"
)

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Fetch and inspect the candidate pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := initProvider()
		if err != nil {
			return err
		}

		candidates, err := provider.Candidates(cmd.Context())
		if err != nil {
			return err
		}

		withCoords := 0
		closed := 0
		cities := make(map[string]int)
		for _, c := range candidates {
			if c.HasCoordinates() {
				withCoords++
			}
			if comps.IsClosedSale(c.Status) {
				closed++
			}
			cities[c.City]++
		}

		fmt.Printf("candidates: %d\n", len(candidates))
		fmt.Printf("with coordinates: %d\n", withCoords)
		fmt.Printf("closed sales: %d\n", closed)
		fmt.Printf("cities: %d\n", len(cities))

		if hp, ok := provider.(*pool.HTTPProvider); ok {
			size, age, cached := hp.Stats()
			if cached {
				fmt.Printf("cache: %d records, %s old\n", size, age.Round(time.Second))
			}
		}
		return nil
	},
}

func init() {
	poolCmd.Flags().StringVar(&poolFile, "file", "", "read candidates from a local xlsx workbook instead of the feed")
	rootCmd.AddCommand(poolCmd)
}
