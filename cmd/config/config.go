package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-docnav/pkg/models"
	"github.com/mattsolo1/grove-docnav/pkg/service"
)

var (
	cfgFile      string
	RootOverride string
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "docnav")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DOCNAV")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("store_dir", ".")
	viper.SetDefault("root_id", models.RootID)
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "docnav"))
	viper.SetDefault("cache", false)
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("fetch_timeout", service.DefaultFetchTimeout)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Warning: failed to read config %s: %v\n", cfgFile, err)
		}
	}
}

// NewLogger builds the logger configured by log_level. Logs go to stderr.
func NewLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	return logrus.NewEntry(logger).WithField("component", "docnav")
}

func InitService() (*service.Service, error) {
	rootID := viper.GetString("root_id")
	if RootOverride != "" {
		rootID = RootOverride
	}

	config := &service.Config{
		StoreDir:     viper.GetString("store_dir"),
		RootID:       rootID,
		DataDir:      viper.GetString("data_dir"),
		Cache:        viper.GetBool("cache"),
		FetchTimeout: viper.GetDuration("fetch_timeout"),
	}

	svc, err := service.New(config, NewLogger())
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/docnav/config.yaml)")
	cmd.PersistentFlags().StringVarP(&RootOverride, "root", "r", "", "Override the root folder id")
	cmd.PersistentFlags().StringP("store", "s", "", "Directory served as the file store")
	cmd.PersistentFlags().Bool("cache", false, "Cache fetched folders in the data directory")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	_ = viper.BindPFlag("store_dir", cmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("cache", cmd.PersistentFlags().Lookup("cache"))
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
}
