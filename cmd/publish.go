package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/notify"
	"github.com/scooplog/scooplog/internal/publish"
	"github.com/spf13/cobra"
)

var (
	publishDate  string
	publishInput string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a confirmed flavor list for a calendar date",
	Long: `publish applies a confirmed flavor batch to the catalog: new flavors are
created, returning flavors get their appearance counters bumped and their
rarity recomputed, and the date's menu entries are replaced. When Kafka is
enabled, a summary event is emitted for the notification service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		date, err := time.Parse(time.DateOnly, publishDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q (want YYYY-MM-DD): %w", publishDate, err)
		}

		data, err := os.ReadFile(publishInput)
		if err != nil {
			return fmt.Errorf("error reading confirmed batch: %w", err)
		}
		var confirmed []models.ConfirmedFlavor
		if err := json.Unmarshal(data, &confirmed); err != nil {
			return fmt.Errorf("error parsing confirmed batch: %w", err)
		}

		ctx := cmd.Context()
		db, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		publisher := publish.NewPublisher(db.flavors, db.menus)
		publisher.Retries = cfg.PublishRetries

		result, err := publisher.Publish(ctx, date, confirmed)
		if err != nil {
			return fmt.Errorf("could not publish menu: %w", err)
		}

		for _, p := range result.Published {
			switch {
			case p.IsNew:
				fmt.Printf("NEW      %-30s first appearance\n", p.Name)
			case p.DaysSinceLast != nil:
				fmt.Printf("RETURN   %-30s appearance #%d, back after %d days\n", p.Name, p.AppearanceNumber, *p.DaysSinceLast)
			default:
				fmt.Printf("RETURN   %-30s appearance #%d\n", p.Name, p.AppearanceNumber)
			}
		}
		for _, f := range result.Failed {
			fmt.Printf("FAILED   %-30s %v\n", f.Name, f.Err)
		}
		fmt.Printf("Published %d flavors for %s (%d rare, %d failed)\n",
			len(result.Published), result.Date.Format(time.DateOnly),
			result.RareCount(cfg.RareAppearanceMax), len(result.Failed))

		if cfg.Kafka.Enabled {
			producer, err := notify.NewProducer(cfg)
			if err != nil {
				return fmt.Errorf("error creating kafka producer: %w", err)
			}
			defer producer.Close()
			if err := notify.EmitMenuPublished(producer, cfg.Kafka.TopicPrefix, result, cfg.RareAppearanceMax, time.Now()); err != nil {
				log.Printf("Failed to emit menu published event: %v", err)
			}
		}

		if len(result.Failed) > 0 {
			return fmt.Errorf("%d of %d flavors failed to publish", len(result.Failed), len(confirmed))
		}
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishDate, "date", time.Now().Format(time.DateOnly), "Menu date (YYYY-MM-DD)")
	publishCmd.Flags().StringVar(&publishInput, "input", "", "Confirmed flavor batch JSON file")
	publishCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(publishCmd)
}
