package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/publipost/publipost/internal/loader"
)

var previewIndex int

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the personalized HTML for one recipient",
	Long: `Preview renders the HTML part the way it will be sent for one
recipient, with textual markers standing in for the actual images.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&previewIndex, "recipient", 0, "zero-based index of the recipient to preview")
}

func runPreview(cmd *cobra.Command, _ []string) error {
	campaign, err := loadCampaign()
	if err != nil {
		return err
	}
	tmpl, err := campaign.ResolveTemplate()
	if err != nil {
		return err
	}

	recipients, err := loader.Recipients(campaign.Recipients)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients in %s", campaign.Recipients)
	}
	if previewIndex < 0 || previewIndex >= len(recipients) {
		return fmt.Errorf("recipient index %d out of range (0..%d)", previewIndex, len(recipients)-1)
	}
	if err := loader.AttachPersonalImages(campaign.Images.PersonalDir, recipients); err != nil {
		return err
	}

	r := recipients[previewIndex]
	html := newComposer(campaign).PreviewHTML(tmpl, *r, campaign.Images.Default != "", len(r.Images))
	fmt.Println(html)
	return nil
}
