package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/publipost/publipost/internal/config"
	"github.com/publipost/publipost/internal/loader"
	"github.com/publipost/publipost/pkg/dispatch"
	"github.com/publipost/publipost/pkg/mailer"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send the campaign to every recipient",
	Long: `Send composes and delivers one message per recipient, in list order,
printing a running log of successes and failures. Ctrl-C stops the batch
between recipients; already-sent mail is not affected.`,
	RunE: runSend,
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	recipients, err := loader.Recipients(campaign.Recipients)
	if err != nil {
		return err
	}
	defaultImage, err := loader.DefaultImage(campaign.Images.Default)
	if err != nil {
		return err
	}
	if err := loader.AttachPersonalImages(campaign.Images.PersonalDir, recipients); err != nil {
		return err
	}

	events := make(chan dispatch.Event)
	opts := dispatcherOptions(campaign)
	opts = append(opts, dispatch.WithProgress(func(e dispatch.Event) { events <- e }))
	d := dispatch.New(opts...)

	var report dispatch.Report
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(events)
		var sendErr error
		report, sendErr = d.SendAll(gctx, providerCfg, tmpl, recipients, defaultImage)
		return sendErr
	})
	g.Go(func() error {
		for e := range events {
			if e.Err != nil {
				fmt.Printf("[%3.0f%%] FAIL %s: %v\n", e.Fraction()*100, e.Email, e.Err)
			} else {
				fmt.Printf("[%3.0f%%] sent %s\n", e.Fraction()*100, e.Email)
			}
		}
		return nil
	})

	err = g.Wait()

	if report.Failed == 0 && err == nil {
		fmt.Printf("done: %d sent\n", report.Sent)
	} else {
		fmt.Printf("%d sent, %d failed\n", report.Sent, report.Failed)
	}
	return err
}

// dispatcherOptions maps campaign settings onto dispatcher options, shared
// by send and test.
func dispatcherOptions(campaign *config.Campaign) []dispatch.Option {
	opts := []dispatch.Option{
		dispatch.WithLogger(newLogger()),
		dispatch.WithComposer(newComposer(campaign)),
	}
	if delay, ok := campaign.Delay(); ok {
		opts = append(opts, dispatch.WithDelay(delay))
	}
	return opts
}

func newComposer(campaign *config.Campaign) *mailer.Composer {
	var copts []mailer.ComposerOption
	if campaign.Markdown {
		copts = append(copts, mailer.WithMarkdown())
	}
	if campaign.SanitizeFields {
		copts = append(copts, mailer.WithFieldSanitization())
	}
	return mailer.NewComposer(copts...)
}
