package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the server needs at startup. Values come from
// config.yaml with PLAYNEX_-prefixed environment variables taking
// precedence (e.g. PLAYNEX_MONGO_URI).
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration

	AWSRegion string
	S3Bucket  string

	CORSOrigins []string
	RateLimit   string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("cmd/config/")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("playnex")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.db", "playnex")
	viper.SetDefault("jwt.access_secret", "")
	viper.SetDefault("jwt.access_expiry", "15m")
	viper.SetDefault("jwt.refresh_secret", "")
	viper.SetDefault("jwt.refresh_expiry", "240h")
	viper.SetDefault("aws.region", "us-east-1")
	viper.SetDefault("aws.s3_bucket", "")
	viper.SetDefault("cors.origins", []string{"*"})
	viper.SetDefault("rate_limit", "100-M")

	if err := viper.ReadInConfig(); err != nil {
		// Env-only deployments run without a config file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return &Config{
		Port:               viper.GetString("server.port"),
		MongoURI:           viper.GetString("mongo.uri"),
		MongoDB:            viper.GetString("mongo.db"),
		AccessTokenSecret:  viper.GetString("jwt.access_secret"),
		AccessTokenExpiry:  viper.GetDuration("jwt.access_expiry"),
		RefreshTokenSecret: viper.GetString("jwt.refresh_secret"),
		RefreshTokenExpiry: viper.GetDuration("jwt.refresh_expiry"),
		AWSRegion:          viper.GetString("aws.region"),
		S3Bucket:           viper.GetString("aws.s3_bucket"),
		CORSOrigins:        viper.GetStringSlice("cors.origins"),
		RateLimit:          viper.GetString("rate_limit"),
	}, nil
}
