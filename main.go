package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dgs3/mdb-index-sync/config"
	"github.com/dgs3/mdb-index-sync/errors"
	"github.com/dgs3/mdb-index-sync/idxsync"
	"github.com/dgs3/mdb-index-sync/log"
	"github.com/dgs3/mdb-index-sync/metrics"
	"github.com/dgs3/mdb-index-sync/sel"
	"github.com/dgs3/mdb-index-sync/topo"
)

// contextKey is a type for context keys used in this package.
type contextKey string

// configContextKey is the context key for storing *config.Config.
const configContextKey contextKey = "config"

var (
	Version   = "v0.1.0" //nolint:gochecknoglobals
	Platform  = ""       //nolint:gochecknoglobals
	GitCommit = ""       //nolint:gochecknoglobals
	GitBranch = ""       //nolint:gochecknoglobals
	BuildTime = ""       //nolint:gochecknoglobals
)

func buildVersion() string {
	return Version + " " + GitCommit + " " + BuildTime
}

//nolint:gochecknoglobals
var rootCmd = &cobra.Command{
	Use:   "mdb-index-sync [flags] <source_uri> <dest_uri>",
	Short: "Copy index definitions from a source MongoDB deployment to a destination",
	Long: "Copy the index definitions of every source collection to the destination " +
		"collection of the same name.\n\n" +
		"The admin, config and local databases and system.views collections are skipped. " +
		"Source collections that do not exist on the destination are skipped; no " +
		"collection is created on the destination.",

	Args: cobra.ExactArgs(2), //nolint:mnd

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd, args)
		if err != nil {
			return errors.Wrap(err, "load config")
		}

		logLevel, err := zerolog.ParseLevel(cfg.Log.Level)
		if err != nil {
			logLevel = zerolog.InfoLevel
		}

		lg := log.InitGlobals(logLevel, cfg.Log.JSON, cfg.Log.NoColor)
		ctx := lg.WithContext(context.Background())
		ctx = context.WithValue(ctx, configContextKey, cfg)
		cmd.SetContext(ctx)

		return nil
	},

	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := cmd.Context().Value(configContextKey).(*config.Config) //nolint:forcetypeassert

		err := config.Validate(cfg)
		if err != nil {
			return errors.Wrap(err, "validate options")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Ctx(ctx).Info("mdb-index-sync " + buildVersion())

		return run(ctx, cfg)
	},
}

//nolint:gochecknoglobals
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		info := "Version:   " + Version +
			"\nPlatform:  " + Platform +
			"\nGitCommit: " + GitCommit +
			"\nGitBranch: " + GitBranch +
			"\nBuildTime: " + BuildTime +
			"\nGoVersion: " + runtime.Version()

		cmd.Println(info)
	},
}

func main() {
	config.AddFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)

	err := rootCmd.Execute()
	if err != nil {
		zerolog.Ctx(context.Background()).Fatal().Err(err).Msg("")
	}
}

// run connects to both deployments and syncs the indexes.
func run(ctx context.Context, cfg *config.Config) error {
	promRegistry := prometheus.NewRegistry()
	metrics.Init(promRegistry)

	if cfg.MetricsFile != "" {
		defer func() {
			err := metrics.WriteTextfile(cfg.MetricsFile, promRegistry)
			if err != nil {
				log.New("metrics").Error(err, "Write metrics file")
			}
		}()
	}

	source, err := connect(ctx, "source", cfg.Source, cfg)
	if err != nil {
		return err
	}

	defer func() {
		err := topo.Disconnect(ctx, source)
		if err != nil {
			log.New("source").Warn("Disconnect: " + err.Error())
		}
	}()

	target, err := connect(ctx, "target", cfg.Target, cfg)
	if err != nil {
		return err
	}

	defer func() {
		err := topo.Disconnect(ctx, target)
		if err != nil {
			log.New("target").Warn("Disconnect: " + err.Error())
		}
	}()

	syncer := idxsync.New(topo.NewCluster(source), topo.NewCluster(target), idxsync.Options{
		Reserved:             sel.DefaultReserved(),
		Filter:               sel.MakeFilter(cfg.IncludeNamespaces, cfg.ExcludeNamespaces),
		PreserveIndexOptions: cfg.PreserveIndexOptions,
	})

	report, err := syncer.Run(log.New("sync").WithContext(ctx), cfg.RemoveDestIndexes)
	report.Log(log.New("sync"))

	if err != nil {
		return errors.Wrap(err, "index sync")
	}

	return nil
}

// connect creates a client for uri and logs the server version. role names the deployment
// in logs and errors.
func connect(ctx context.Context, role, uri string, cfg *config.Config) (*mongo.Client, error) {
	hosts := topo.RedactedHosts(uri)

	m, err := topo.Connect(ctx, uri, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s %s", role, hosts)
	}

	lg := log.New(role)

	info, err := topo.GetBuildInfo(ctx, m)
	if err != nil {
		lg.Warn("Get server version: " + err.Error())
	} else {
		lg.Infof("Connected to %s (MongoDB %s)", hosts, info.FullString())
	}

	return m, nil
}
