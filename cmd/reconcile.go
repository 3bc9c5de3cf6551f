package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/reconcile"
	"github.com/spf13/cobra"
)

var (
	reconcileInput  string
	reconcileOutput string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Match observed flavor names against the catalog",
	Long: `reconcile reads a JSON batch of observed flavor names (the output of the
photo text-extraction step) and matches each against the flavor catalog.
It prints a per-name verdict and optionally writes a confirmed-batch
skeleton for the publish command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		data, err := os.ReadFile(reconcileInput)
		if err != nil {
			return fmt.Errorf("error reading observed batch: %w", err)
		}
		var observed []models.ObservedFlavor
		if err := json.Unmarshal(data, &observed); err != nil {
			return fmt.Errorf("error parsing observed batch: %w", err)
		}

		ctx := cmd.Context()
		db, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		catalog, err := db.flavors.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("error loading catalog: %w", err)
		}

		results := reconcile.Reconcile(observed, catalog, cfg.MatchThreshold)
		now := time.Now()
		confirmed := make([]models.ConfirmedFlavor, 0, len(results))
		for _, r := range results {
			line := models.ConfirmedFlavor{Name: r.Observed}
			if r.SoldOut {
				line.SoldOutAt = &now
			}
			switch {
			case r.IsNew:
				fmt.Printf("NEW      %-30s (no match within distance %d)\n", r.Observed, cfg.MatchThreshold)
			case reconcile.AutoAccepted(r, cfg.AutoAcceptMedium):
				fmt.Printf("MATCH    %-30s -> %s (distance %d, %s)\n", r.Observed, r.Flavor.Name, r.Distance, r.Confidence)
				line.FlavorID = r.Flavor.ID
				line.Name = r.Flavor.Name
			default:
				fmt.Printf("REVIEW   %-30s -> %s? (distance %d, %s)\n", r.Observed, r.Flavor.Name, r.Distance, r.Confidence)
				line.FlavorID = r.Flavor.ID
				line.Name = r.Flavor.Name
			}
			confirmed = append(confirmed, line)
		}

		if reconcileOutput != "" {
			out, err := json.MarshalIndent(confirmed, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(reconcileOutput, out, 0o644); err != nil {
				return fmt.Errorf("error writing confirmed batch: %w", err)
			}
			fmt.Printf("Wrote confirmed batch skeleton to %s\n", reconcileOutput)
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileInput, "input", "", "Observed flavor batch JSON file")
	reconcileCmd.Flags().StringVar(&reconcileOutput, "out", "", "Write confirmed-batch skeleton JSON here")
	reconcileCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(reconcileCmd)
}
