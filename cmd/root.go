package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "scooplog",
	Short: "Tracks ice-cream flavor rarity and daily menu history",
	Long: `scooplog maintains an ice-cream shop's flavor catalog: it reconciles
photo-derived menu text against the catalog, publishes confirmed daily
menus, and tracks how rarely each flavor appears over the years.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.PersistentFlags().Int("match-threshold", 3, "Edit-distance cutoff for fuzzy catalog matching")
	rootCmd.PersistentFlags().Bool("auto-accept-medium", false, "Apply medium-confidence matches without confirmation")
	rootCmd.PersistentFlags().Bool("kafka-enabled", false, "Enable Kafka publication events")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")

	viper.BindPFlag("match_threshold", rootCmd.PersistentFlags().Lookup("match-threshold"))
	viper.BindPFlag("auto_accept_medium", rootCmd.PersistentFlags().Lookup("auto-accept-medium"))
	viper.BindPFlag("kafka.enabled", rootCmd.PersistentFlags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka.broker_list", rootCmd.PersistentFlags().Lookup("kafka-broker-list"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigType("json")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
