// Package cmd provides the CLI commands for publipost.
package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/publipost/publipost/internal/config"
	"github.com/publipost/publipost/pkg/dispatch"
	"github.com/publipost/publipost/pkg/logger"
)

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "publipost",
	Short: "Personalized bulk email sender",
	Long: `Publipost sends personalized bulk email: per-recipient fields are
substituted into a subject/body template, a shared default image and
per-recipient images are attached inline, and each message is delivered
through SMTP, the Resend API, or the Gmail API.

Example:
  publipost test -c campaign.yaml     # send a test mail to yourself
  publipost send -c campaign.yaml     # run the full batch
  publipost preview -c campaign.yaml  # print the rendered HTML`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(loadEnv)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "campaign.yaml", "campaign file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "env file with provider credentials")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each send attempt to stdout")

	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(previewCmd)
}

// loadEnv loads credentials from the env file when present. A missing file
// is fine; the variables may already be in the environment.
func loadEnv() {
	_ = godotenv.Load(envFile)
}

func newLogger() *slog.Logger {
	if !verbose {
		return logger.NewNope()
	}
	return logger.NewWithSentry(logger.SentryConfig{
		DSN:         os.Getenv("SENTRY_DSN"),
		Environment: os.Getenv("SENTRY_ENVIRONMENT"),
	}, dispatch.BatchIDExtractor)
}

func loadCampaign() (*config.Campaign, error) {
	return config.Load(cfgFile)
}
