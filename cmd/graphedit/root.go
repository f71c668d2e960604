package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphedit/pkg/archive"
	"github.com/dd0wney/cluso-graphedit/pkg/config"
	"github.com/dd0wney/cluso-graphedit/pkg/logging"
)

var version = "0.3.0"

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "graphedit",
	Short:   "graphedit, an interactive weighted-graph editor",
	Long:    brand.Sprint("graphedit") + " draws, connects and routes weighted graphs in the terminal\n" + subtle.Sprint("Click to place nodes, press f to find the shortest path"),
	Version: version,

	SilenceUsage:  true,
}

func init() {
	rootCmd.SetVersionTemplate("graphedit {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		editCmd(),
		pathCmd(),
		inspectCmd(),
		convertCmd(),
		configCmd(),
	)
}

// loadConfig reads --config and applies the log level override. The flag
// wins over LOG_LEVEL, which wins over the file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// headlessLogger is the process logger on stderr, so stdout stays clean
// for command output.
func headlessLogger(cfg *config.Config) logging.Logger {
	logger := logging.DefaultLogger()
	logger.SetLevel(logging.ParseLevel(cfg.Logging.Level))
	return logger.With(logging.Component("cli"))
}

// newArchive resolves bare locations under the storage directory and
// creates the S3 client on first use of an s3:// location.
func newArchive(cfg *config.Config) *archive.Archive {
	opts := archive.S3Options{
		Region:          cfg.Storage.S3.Region,
		Endpoint:        cfg.Storage.S3.Endpoint,
		UsePathStyle:    cfg.Storage.S3.UsePathStyle,
		AccessKeyID:     cfg.Storage.S3.AccessKeyID,
		SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
	}
	return archive.New(cfg.Storage.Dir, archive.WithObjectStoreFactory(func(ctx context.Context) (archive.ObjectAPI, error) {
		client, err := archive.NewS3Client(ctx, opts)
		if err != nil {
			return nil, err
		}
		return client, nil
	}))
}
