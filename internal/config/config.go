package config

import (
	"time"

	"github.com/spf13/viper"
)

// The service runs as a single logical backend instance; DB connection
// variables, AWS settings and queue URLs come in as environment variables
// for the specific pod.

type Config struct {
	DBHost             string `mapstructure:"DB_HOST"`
	DBPort             string `mapstructure:"DB_PORT"`
	DBUser             string `mapstructure:"DB_USER"`
	DBPassword         string `mapstructure:"DB_PASSWORD"`
	DBName             string `mapstructure:"DB_NAME"`
	ServerPort         string `mapstructure:"SERVER_PORT"`
	AWSRegion          string `mapstructure:"AWS_REGION"`
	CrmSyncSQSQueueURL string `mapstructure:"CRMSYNC_SQS_QUEUE_URL"`
	EmailSQSQueueURL   string `mapstructure:"EMAIL_SQS_QUEUE_URL"`
	AWSEndpoint        string `mapstructure:"AWS_ENDPOINT"`
	LegacyCRMURL       string `mapstructure:"LEGACY_CRM_URL"`
	NotifySender       string `mapstructure:"NOTIFY_SENDER"`
	IsLocalDev         bool   `mapstructure:"LOCAL_DEV"`

	// Presence tuning. TabCloseGraceSeconds is the debounce between the last
	// tab closing and the auto-break; OfflineAfterSeconds is the sweeper's
	// second-chance threshold.
	TabCloseGraceSeconds int `mapstructure:"TAB_CLOSE_GRACE_SECONDS"`
	SweepIntervalSeconds int `mapstructure:"SWEEP_INTERVAL_SECONDS"`
	OfflineAfterSeconds  int `mapstructure:"OFFLINE_AFTER_SECONDS"`
}

// TabCloseGrace returns the auto-break debounce as a duration.
func (c Config) TabCloseGrace() time.Duration {
	return time.Duration(c.TabCloseGraceSeconds) * time.Second
}

// SweepInterval returns the presence sweeper period as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// OfflineAfter returns the sweeper's offline threshold as a duration.
func (c Config) OfflineAfter() time.Duration {
	return time.Duration(c.OfflineAfterSeconds) * time.Second
}

// LoadConfig reads configuration from environment variables with sane
// local-development defaults.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("DB_HOST", "db")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "salescrm_db")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("CRMSYNC_SQS_QUEUE_URL", "http://localstack:4566/000000000000/crmsync-queue")
	viper.SetDefault("EMAIL_SQS_QUEUE_URL", "http://localstack:4566/000000000000/email-queue")
	viper.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	viper.SetDefault("LEGACY_CRM_URL", "http://localhost:8081/")
	viper.SetDefault("NOTIFY_SENDER", "no-reply@salescrm.example.com")
	viper.SetDefault("LOCAL_DEV", false)
	viper.SetDefault("TAB_CLOSE_GRACE_SECONDS", 5)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 10)
	viper.SetDefault("OFFLINE_AFTER_SECONDS", 10)

	// Read in environment variables that match the keys.
	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	return
}
