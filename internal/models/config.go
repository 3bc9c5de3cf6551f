package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type KafkaConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	BrokerList   string `mapstructure:"broker_list"`
	ProducerType string `mapstructure:"producer_type"` // "sarama" or "confluent"
	TopicPrefix  string `mapstructure:"topic_prefix"`
}

type CloudStorageConfig struct {
	Provider   string `mapstructure:"provider"`
	Region     string `mapstructure:"region"`
	BucketName string `mapstructure:"bucket_name"`
}

type Config struct {
	Database DatabaseConfig     `mapstructure:"database"`
	Kafka    KafkaConfig        `mapstructure:"kafka"`
	Cloud    CloudStorageConfig `mapstructure:"cloud_storage"`

	// MatchThreshold is the edit-distance cutoff for fuzzy catalog matching.
	MatchThreshold int `mapstructure:"match_threshold"`
	// AutoAcceptMedium lets medium-confidence matches pass without human
	// confirmation. Only high-confidence matches auto-accept by default.
	AutoAcceptMedium bool `mapstructure:"auto_accept_medium"`
	// RareAppearanceMax is the appearance-number cutoff below which a
	// published flavor counts as rare in notification summaries.
	RareAppearanceMax int `mapstructure:"rare_appearance_max"`

	SeedFlavors    int       `mapstructure:"seed_flavors"`
	SeedStartDate  time.Time `mapstructure:"seed_start_date"`
	OutputPath     string    `mapstructure:"output_path"`
	OutputFolder   string    `mapstructure:"output_folder"`
	OutputDest     string    `mapstructure:"output_destination"` // "local", "s3"
	PublishRetries int       `mapstructure:"publish_retries"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.AutomaticEnv()

	viper.SetDefault("match_threshold", 3)
	viper.SetDefault("rare_appearance_max", 5)
	viper.SetDefault("publish_retries", 3)
	viper.SetDefault("kafka.producer_type", "sarama")
	viper.SetDefault("kafka.topic_prefix", "scooplog")
	viper.SetDefault("output_destination", "local")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &config, nil
}
