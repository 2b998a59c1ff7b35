package config

import (
	"time"

	"github.com/dgs3/mdb-index-sync/errors"
	"github.com/dgs3/mdb-index-sync/validate"
)

const (
	// DefaultMongoDBOperationTimeout is the default client-side operation timeout.
	DefaultMongoDBOperationTimeout = 5 * time.Minute

	// DisconnectTimeout bounds closing a client connection on exit.
	DisconnectTimeout = 5 * time.Second
)

// Validate validates the Config for required fields and value ranges.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid config")
	}

	if cfg.Source == cfg.Target {
		return errors.New("source URI and target URI are identical")
	}

	return nil
}
