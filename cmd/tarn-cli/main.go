package main

import (
	"os"

	tarn "github.com/tarnplatform/tarn-go"

	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile   string
	endpoint  string
	authToken string
	profile   string
	jsonOut   bool
	quiet     bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:     "tarn-cli",
	Version: version,
	Short:   "Client for the Tarn data platform",
	Long: `Tarn CLI - client-side utilities for the Tarn data platform

Storage transfers:
  - upload:   Upload a local file to s3:// or sftp:// storage
  - download: Download a file from s3:// or sftp:// storage

Platform operations:
  - copy-handles: Copy file handles onto new objects in batches

Connection settings come from the config file (~/.tarn/config.yaml),
TARN_* environment variables, and flags, in increasing precedence.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.tarn/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "platform endpoint URL (env: TARN_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&authToken, "auth-token", "t", "", "personal access token (env: TARN_AUTH_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: TARN_PROFILE)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(copyHandlesCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from the flag, environment,
// or default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if envPath := tarn.ConfigPathFromEnv(); envPath != "" {
		return envPath
	}
	return tarn.DefaultConfigPath()
}

// loadProfile resolves the active profile from the config file, or nil
// when no config file exists.
func loadProfile() (*tarn.Profile, error) {
	configPath := getConfigPath()
	cfg, err := tarn.LoadConfigFile(configPath)
	if err != nil {
		// Only error if the user explicitly named a config file.
		if cfgFile != "" {
			return nil, err
		}
		return nil, nil
	}

	name := profile
	if name == "" {
		name = tarn.ProfileFromEnv()
	}
	p, err := cfg.GetProfile(name)
	if err != nil {
		// A missing named profile is an error; an empty config is not.
		if name != "" {
			return nil, err
		}
		return nil, nil
	}
	return p, nil
}

// buildConfig merges config from profile, env vars, and flags
// (flags take precedence).
func buildConfig() (*tarn.Config, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}

	return tarn.MergeConfig(
		tarn.ConfigFromProfile(p),
		tarn.ConfigFromEnv(),
		&tarn.Config{
			Endpoint:  endpoint,
			AuthToken: authToken,
		},
	), nil
}

// getClient creates and returns a configured platform client.
func getClient() (*tarn.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return tarn.New(cfg)
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() tarn.Formatter {
	return tarn.NewFormatter(jsonOut, quiet)
}
