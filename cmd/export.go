package cmd

import (
	"fmt"
	"time"

	"github.com/scooplog/scooplog/internal/exporter"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the flavor catalog and menu history",
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

		out, err := exporter.New(cfg, exportFormat, time.Now())
		if err != nil {
			return err
		}

		flavors, err := db.flavors.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("error loading catalog: %w", err)
		}
		flavorRows := make([]exporter.FlavorHistoryRow, 0, len(flavors))
		for _, f := range flavors {
			flavorRows = append(flavorRows, exporter.FlavorRow(f))
		}
		if err := out.WriteFlavors(flavorRows); err != nil {
			return fmt.Errorf("error exporting flavor history: %w", err)
		}

		entries, err := db.menus.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("error loading menu entries: %w", err)
		}
		menuRows := make([]exporter.MenuEntryRow, 0, len(entries))
		for _, e := range entries {
			menuRows = append(menuRows, exporter.MenuRow(e))
		}
		if err := out.WriteMenuEntries(menuRows); err != nil {
			return fmt.Errorf("error exporting menu entries: %w", err)
		}

		fmt.Printf("Exported %d flavors and %d menu entries as %s\n", len(flavorRows), len(menuRows), exportFormat)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", exporter.FormatCSV, "Export format: csv, json or parquet")
	rootCmd.AddCommand(exportCmd)
}
