package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tanq16/slicer/internal/output"
	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/store/registry"
	"github.com/tanq16/slicer/internal/utils"
)

var (
	configFile string
	logLevel   string
	settings   = viper.New()
)

var SlicerVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "slicer",
	Short: "Sliced parallel transfers for gs://, s3:// and minio:// objects",
	Long: `slicer moves single large objects between object storage and local disk as fast as
possible. Downloads are split into byte-range slices fetched by parallel workers and
written straight into the output file. Stream uploads are cut into slice objects,
uploaded in parallel and composed server-side into the final object.`,
	Version:       SlicerVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal: initConfig refers to rootCmd.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		utils.InitLogger(settings.GetString("log_level"))
		log.Debug().Str("op", "cmd/root").Str("config", settings.ConfigFileUsed()).Msg("configuration loaded")
		return nil
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $HOME/.config/slicer/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newDownload2Cmd())
	rootCmd.AddCommand(newStreamUploadCmd())
	rootCmd.AddCommand(newCleanCmd())
}

// initConfig layers flags over SLICER_* env vars over the config file over
// defaults.
func initConfig() error {
	settings.SetEnvPrefix("SLICER")
	settings.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	settings.AutomaticEnv()

	settings.SetDefault("log_level", "info")
	settings.SetDefault("minio.secure", true)
	if err := settings.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}

	if configFile != "" {
		settings.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			settings.AddConfigPath(filepath.Join(home, ".config", "slicer"))
		}
		settings.SetConfigName("config")
		settings.SetConfigType("yaml")
	}
	if err := settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || (configFile == "" && os.IsNotExist(err)) {
			return nil
		}
		return utils.NewError(utils.ErrInvalidConfig, "cmd/config", err)
	}
	return nil
}

// backendConfig reads the per-store settings. parallelism is the number of
// concurrent requests the command will make and sizes the connection pool.
func backendConfig(parallelism int) utils.BackendConfig {
	return utils.BackendConfig{
		S3Profile:          settings.GetString("s3.profile"),
		S3Region:           settings.GetString("s3.region"),
		S3Endpoint:         settings.GetString("s3.endpoint"),
		GCSCredentialsFile: settings.GetString("gcs.credentials_file"),
		GCSAccessToken:     settings.GetString("gcs.access_token"),
		GCSEndpoint:        settings.GetString("gcs.endpoint"),
		MinioEndpoint:      settings.GetString("minio.endpoint"),
		MinioAccessKey:     settings.GetString("minio.access_key"),
		MinioSecretKey:     settings.GetString("minio.secret_key"),
		MinioSecure:        settings.GetBool("minio.secure"),
		MinioRegion:        settings.GetString("minio.region"),
		HTTPClientConfig: utils.HTTPClientConfig{
			KATimeout:      90 * time.Second,
			MaxConns:       max(parallelism, 1),
			HighThreadMode: parallelism > 8,
		},
	}
}

func resolveFactory(protocol string, parallelism int, transferChunk int64) (store.Factory, error) {
	return registry.Resolve(protocol, backendConfig(parallelism), store.Options{TransferChunkSize: transferChunk})
}

// fail reports err and exits non-zero.
func fail(op string, err error) {
	log.Error().Str("op", op).Msg(err.Error())
	output.PrintError(err.Error())
	os.Exit(1)
}
