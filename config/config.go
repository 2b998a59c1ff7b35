// Package config provides configuration management for mdb-index-sync using Viper.
package config

import (
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgs3/mdb-index-sync/errors"
)

// EnvPrefix is the prefix of the environment variables mapped to flags.
const EnvPrefix = "MDB_INDEX_SYNC"

// Config holds all mdb-index-sync configuration.
type Config struct {
	// Source and Target come from the positional arguments.
	Source string `mapstructure:"source" validate:"required,mongouri"`
	Target string `mapstructure:"target" validate:"required,mongouri"`

	RemoveDestIndexes    bool `mapstructure:"remove-dest-indexes"`
	PreserveIndexOptions bool `mapstructure:"preserve-index-options"`

	IncludeNamespaces []string `mapstructure:"include-namespaces"`
	ExcludeNamespaces []string `mapstructure:"exclude-namespaces"`

	// MetricsFile is the path of a prometheus textfile written after the run.
	MetricsFile string `mapstructure:"metrics-file"`

	Log LogConfig `mapstructure:",squash"`

	MongoDB MongoDBConfig `mapstructure:",squash"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"log-level"    validate:"loglevel"`
	JSON    bool   `mapstructure:"log-json"`
	NoColor bool   `mapstructure:"log-no-color"`
}

// MongoDBConfig holds MongoDB client configuration.
type MongoDBConfig struct {
	// OperationTimeout is the client-side timeout of every operation. 0 disables it.
	OperationTimeout time.Duration `mapstructure:"mongodb-operation-timeout" validate:"gte=0"`
}

// AddFlags defines the flags read by [Load] on cmd.
func AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolP("remove-dest-indexes", "r", false,
		"Drop all indexes on every destination collection before copying")
	flags.Bool("preserve-index-options", false,
		"Copy every index option (unique, TTL, partial filter, collation, ...), "+
			"not only the key pattern and name")
	flags.StringSlice("include-namespaces", nil,
		"Namespaces to include (e.g. db1.collection1,db2.*)")
	flags.StringSlice("exclude-namespaces", nil,
		"Namespaces to exclude (e.g. db3.collection3,db4.*)")
	flags.String("metrics-file", "",
		"Write run metrics in the prometheus text format to this file")

	pflags := cmd.PersistentFlags()

	pflags.String("log-level", "info", "Log level")
	pflags.Bool("log-json", false, "Output log in JSON format")
	pflags.Bool("log-no-color", false, "Disable log color")
	pflags.Duration("mongodb-operation-timeout", DefaultMongoDBOperationTimeout,
		"Timeout for MongoDB operations (e.g., 30s, 5m)")
}

// Load reads flags and environment variables of cmd and the source and destination
// URIs from args.
func Load(cmd *cobra.Command, args []string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cmd.PersistentFlags() != nil {
		_ = v.BindPFlags(cmd.PersistentFlags())
	}

	if cmd.Flags() != nil {
		_ = v.BindPFlags(cmd.Flags())
	}

	var cfg Config

	err := v.Unmarshal(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if len(args) > 0 {
		cfg.Source = args[0]
	}

	if len(args) > 1 {
		cfg.Target = args[1]
	}

	cfg.IncludeNamespaces = trimEmpty(cfg.IncludeNamespaces)
	cfg.ExcludeNamespaces = trimEmpty(cfg.ExcludeNamespaces)

	return &cfg, nil
}

func trimEmpty(list []string) []string {
	if len(list) == 0 {
		return nil
	}

	rv := make([]string, 0, len(list))

	for _, s := range list {
		s = strings.TrimSpace(s)
		if s != "" {
			rv = append(rv, s)
		}
	}

	return rv
}
