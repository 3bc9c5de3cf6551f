package cmd

import (
	"fmt"
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/rarity"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flavor name]",
	Short: "Show rarity and appearance stats for a flavor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		ctx := cmd.Context()
		db, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		flavor, err := db.flavors.GetByName(ctx, args[0])
		if err != nil {
			return err
		}

		now := time.Now()
		info, err := rarity.Describe(flavor, now)
		if err != nil {
			return err
		}
		stats, err := rarity.DeriveStats(flavor, now)
		if err != nil {
			return err
		}

		fmt.Printf("%s %s: %s (score %.1f)\n", info.Emoji, flavor.Name, info.Label, info.Score)
		fmt.Printf("  %s\n", info.Description)
		fmt.Printf("  First appeared:  %s\n", flavor.FirstAppeared.Format(time.DateOnly))
		if flavor.LastAppeared != nil {
			fmt.Printf("  Last appeared:   %s\n", flavor.LastAppeared.Format(time.DateOnly))
		}
		fmt.Printf("  Appearances:     %d over %d year(s) (%.1f/year)\n",
			flavor.TotalAppearances, stats.YearsTracking, stats.AvgAppearancesPerYear)
		if stats.DaysSinceLastSeen != nil {
			fmt.Printf("  Days since seen: %d\n", *stats.DaysSinceLastSeen)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
