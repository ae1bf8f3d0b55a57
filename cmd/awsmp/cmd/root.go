// Package cmd implements the awsmp command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canonical/awsmp/internal/cmd/output"
	"github.com/canonical/awsmp/pkg/logging"
)

var (
	outputFormat string
	verbose      bool
	quiet        bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "awsmp",
	Short: "AWS Marketplace AMI listing management",
	Long: `awsmp manages AWS Marketplace AMI product listings from declarative
local configuration.

It inspects catalog entities, diffs a local listing file against the
remote state, and submits the change sets needed to converge them:
descriptions, regions, versions, instance types and pricing, and
public or private offers.`,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddGroup(&cobra.Group{
		ID:    "inspect",
		Title: "Inspection Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "offers",
		Title: "Offer Commands:",
	})

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"output format: table, json, yaml (default auto-detects)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	if err := viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		panic(fmt.Sprintf("Failed to bind verbose flag: %v", err))
	}
	if err := viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet")); err != nil {
		panic(fmt.Sprintf("Failed to bind quiet flag: %v", err))
	}
}

// initConfig reads in environment variables and .env files.
func initConfig() {
	loadEnvFiles()

	viper.SetEnvPrefix("AWSMP")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configureLogging()
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	outputFormat = string(output.DetectFormat(string(format)))
	return nil
}

// configureLogging sets up the logging system based on configuration.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if quiet || viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	logging.SetLevel(level)
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}

// formatter returns the output formatter for the detected format.
func formatter() output.Formatter {
	return output.NewFormatter(output.Format(outputFormat))
}

// printChangeSet reports a submitted change set with its console URL.
func printChangeSet(id string) {
	fmt.Printf("ChangeSet created (ID: %s)\n", id)
	fmt.Printf("https://aws.amazon.com/marketplace/management/requests/%s\n", id)
}
