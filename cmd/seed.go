package cmd

import (
	"fmt"
	"time"

	"github.com/scooplog/scooplog/internal/factories"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/spf13/cobra"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the catalog with generated flavors",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		count := seedCount
		if count == 0 {
			count = cfg.SeedFlavors
		}
		start := cfg.SeedStartDate
		if start.IsZero() {
			start = time.Now().AddDate(-10, 0, 0)
		}

		ctx := cmd.Context()
		db, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		factory := &factories.FlavorFactory{}
		flavors := factory.CreateFlavors(count, start, time.Now())

		if err := db.flavors.BulkCreate(ctx, flavors); err != nil {
			return fmt.Errorf("error seeding flavors: %w", err)
		}
		fmt.Printf("Seeded %d flavors\n", len(flavors))
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "Number of flavors to create (default from config)")
	rootCmd.AddCommand(seedCmd)
}
