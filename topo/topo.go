// Package topo wraps the MongoDB driver calls mdb-index-sync issues against a deployment.
package topo

import (
	"context"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"github.com/dgs3/mdb-index-sync/config"
	"github.com/dgs3/mdb-index-sync/errors"
)

// AppName is reported to the server in the client handshake.
const AppName = "mdb-index-sync"

// Connect creates a client for uri and checks the deployment is reachable.
func Connect(ctx context.Context, uri string, cfg *config.Config) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("invalid MongoDB URI")
	}

	opts := options.Client().
		ApplyURI(uri).
		SetAppName(AppName).
		SetReadPreference(readpref.Primary())

	if cfg != nil && cfg.MongoDB.OperationTimeout > 0 {
		opts.SetTimeout(cfg.MongoDB.OperationTimeout)
	}

	m, err := mongo.Connect(opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	err = m.Ping(ctx, nil)
	if err != nil {
		return nil, errors.Join(errors.Wrap(err, "ping"), Disconnect(ctx, m))
	}

	return m, nil
}

// Disconnect closes the client within [config.DisconnectTimeout], even if ctx is done.
func Disconnect(ctx context.Context, m *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.DisconnectTimeout)
	defer cancel()

	return errors.Wrap(m.Disconnect(ctx), "disconnect")
}

// BuildInfo is the subset of the buildInfo command response that is logged.
type BuildInfo struct {
	Version    string   `bson:"version"`
	GitVersion string   `bson:"gitVersion"`
	Modules    []string `bson:"modules"`
}

// FullString returns the version with the enterprise marker when present.
func (b BuildInfo) FullString() string {
	if slices.Contains(b.Modules, "enterprise") {
		return b.Version + "-enterprise"
	}

	return b.Version
}

// GetBuildInfo runs the buildInfo command.
func GetBuildInfo(ctx context.Context, m *mongo.Client) (*BuildInfo, error) {
	var info BuildInfo

	err := m.Database("admin").RunCommand(ctx, bson.D{{Key: "buildInfo", Value: 1}}).Decode(&info)
	if err != nil {
		return nil, errors.Wrap(err, "buildInfo")
	}

	return &info, nil
}

// RedactedHosts returns "scheme://host1,host2" for uri, without credentials or options.
func RedactedHosts(uri string) string {
	cs, err := connstring.Parse(uri)
	if err != nil {
		return "<invalid uri>"
	}

	return cs.Scheme + "://" + strings.Join(cs.Hosts, ",")
}
