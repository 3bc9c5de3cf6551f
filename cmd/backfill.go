package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/publish"
	"github.com/scooplog/scooplog/internal/reconcile"
	"github.com/spf13/cobra"
)

var backfillInput string

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Import historical daily menus from CSV",
	Long: `backfill replays a CSV of historical menus (columns: date, flavor name,
sold_out) through reconciliation and publication, one date at a time in
chronological order, building up the catalog's appearance history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		byDate, dates, err := readBackfillCSV(backfillInput)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		publisher := publish.NewPublisher(db.flavors, db.menus)
		publisher.Retries = cfg.PublishRetries

		bar := progressbar.Default(int64(len(dates)), "backfilling menus")
		var failed int
		for _, date := range dates {
			catalog, err := db.flavors.GetAll(ctx)
			if err != nil {
				return fmt.Errorf("error loading catalog: %w", err)
			}

			results := reconcile.Reconcile(byDate[date], catalog, cfg.MatchThreshold)
			confirmed := make([]models.ConfirmedFlavor, 0, len(results))
			for _, r := range results {
				line := models.ConfirmedFlavor{Name: r.Observed}
				if !r.IsNew && reconcile.AutoAccepted(r, cfg.AutoAcceptMedium) {
					line.FlavorID = r.Flavor.ID
					line.Name = r.Flavor.Name
				}
				if r.SoldOut {
					soldOut := date
					line.SoldOutAt = &soldOut
				}
				confirmed = append(confirmed, line)
			}

			result, err := publisher.Publish(ctx, date, confirmed)
			if err != nil {
				return fmt.Errorf("error publishing %s: %w", date.Format(time.DateOnly), err)
			}
			failed += len(result.Failed)
			bar.Add(1)
		}

		fmt.Printf("Backfilled %d menu dates (%d flavor failures)\n", len(dates), failed)
		return nil
	},
}

func readBackfillCSV(path string) (map[time.Time][]models.ObservedFlavor, []time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening backfill file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Read() // header

	byDate := make(map[time.Time][]models.ObservedFlavor)
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if len(fields) < 2 {
			continue
		}

		date, err := time.Parse(time.DateOnly, fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("bad date %q: %w", fields[0], err)
		}
		date = models.ToDate(date)

		soldOut := false
		if len(fields) > 2 {
			soldOut, _ = strconv.ParseBool(fields[2])
		}
		byDate[date] = append(byDate[date], models.ObservedFlavor{Name: fields[1], SoldOut: soldOut})
	}

	dates := make([]time.Time, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return byDate, dates, nil
}

func init() {
	backfillCmd.Flags().StringVar(&backfillInput, "input", "", "Historical menu CSV file")
	backfillCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(backfillCmd)
}
