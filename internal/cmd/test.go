package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/publipost/publipost/internal/loader"
	"github.com/publipost/publipost/pkg/dispatch"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a single test mail to the configured sender address",
	Long: `Test validates the provider configuration before a real batch: it
composes a message for a fabricated sample recipient and sends it to the
sender's own address, including the campaign's default image.`,
	RunE: runTest,
}

func runTest(cmd *cobra.Command, _ []string) error {
	campaign, err := loadCampaign()
	if err != nil {
		return err
	}
	tmpl, err := campaign.ResolveTemplate()
	if err != nil {
		return err
	}
	providerCfg, err := campaign.BuildProvider()
	if err != nil {
		return err
	}
	defaultImage, err := loader.DefaultImage(campaign.Images.Default)
	if err != nil {
		return err
	}

	d := dispatch.New(dispatcherOptions(campaign)...)
	if err := d.SendTest(cmd.Context(), providerCfg, tmpl, defaultImage); err != nil {
		return fmt.Errorf("test send failed: %w", err)
	}

	fmt.Printf("test mail sent to %s\n", providerCfg.SenderAddress())
	return nil
}
