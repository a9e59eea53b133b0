// Package config loads campaign files. A campaign is a YAML document
// describing the template, the recipient list, the images and the delivery
// provider. Credentials never live in the campaign file; they are read from
// the environment when the provider configuration is built.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/publipost/publipost/pkg/mailer"
)

// Environment variables holding provider credentials.
const (
	EnvSMTPEmail    = "SMTP_EMAIL"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvResendAPIKey = "RESEND_API_KEY"
	EnvResendFrom   = "RESEND_FROM_EMAIL"
	EnvGmailSender  = "GMAIL_SENDER_EMAIL"
	EnvGmailToken   = "GMAIL_ACCESS_TOKEN"
)

const defaultSMTPPort = 587

// Campaign is one send operation's full description.
type Campaign struct {
	Template   Template `yaml:"template"`
	Recipients string   `yaml:"recipients"`
	Images     Images   `yaml:"images"`
	Provider   Provider `yaml:"provider"`

	// DelayMS overrides the pacing delay between recipients, in
	// milliseconds. Negative means "use the default".
	DelayMS int `yaml:"delay_ms"`

	// Markdown renders the body through markdown instead of literal
	// newline conversion.
	Markdown bool `yaml:"markdown"`

	// SanitizeFields strips HTML from recipient values before they enter
	// the HTML part.
	SanitizeFields bool `yaml:"sanitize_fields"`
}

// Template is the campaign's subject and body. Body and BodyFile are
// mutually exclusive; BodyFile reads the body from a text file next to the
// campaign.
type Template struct {
	Subject  string `yaml:"subject"`
	Body     string `yaml:"body"`
	BodyFile string `yaml:"body_file"`
}

// Images points at the shared default image and the directory of
// per-recipient images.
type Images struct {
	Default     string `yaml:"default"`
	PersonalDir string `yaml:"personal_dir"`
}

// Provider selects and parameterizes the delivery backend.
// Kind is one of "smtp", "resend", "gmail". For SMTP, either a preset name
// (gmail, outlook, yahoo) or an explicit host/port.
type Provider struct {
	Kind   string `yaml:"kind"`
	Preset string `yaml:"preset"`
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
}

// Load reads and validates a campaign file.
func Load(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign file: %w", err)
	}

	var c Campaign
	c.DelayMS = -1
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse campaign file: %w", err)
	}

	if c.Recipients == "" {
		return nil, fmt.Errorf("campaign: recipients file is required")
	}
	if c.Template.Body != "" && c.Template.BodyFile != "" {
		return nil, fmt.Errorf("campaign: body and body_file are mutually exclusive")
	}
	if c.Provider.Kind == "" {
		return nil, fmt.Errorf("campaign: provider kind is required")
	}

	return &c, nil
}

// ResolveTemplate returns the mail template, reading the body file when one
// is configured.
func (c *Campaign) ResolveTemplate() (mailer.Template, error) {
	body := c.Template.Body
	if c.Template.BodyFile != "" {
		data, err := os.ReadFile(c.Template.BodyFile)
		if err != nil {
			return mailer.Template{}, fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}
	return mailer.Template{Subject: c.Template.Subject, Body: body}, nil
}

// BuildProvider assembles the provider configuration from the campaign and
// the credentials present in the environment. The result is validated by
// the dispatcher before any network attempt.
func (c *Campaign) BuildProvider() (mailer.ProviderConfig, error) {
	switch strings.ToLower(c.Provider.Kind) {
	case "smtp":
		host, port := c.Provider.Host, c.Provider.Port
		if c.Provider.Preset != "" {
			preset, ok := mailer.SMTPPresets[strings.ToLower(c.Provider.Preset)]
			if !ok {
				return nil, fmt.Errorf("campaign: unknown smtp preset %q", c.Provider.Preset)
			}
			host, port = preset.Host, preset.Port
		}
		if port == 0 {
			port = defaultSMTPPort
		}
		return mailer.SMTPConfig{
			Host:     host,
			Port:     port,
			Email:    os.Getenv(EnvSMTPEmail),
			Password: os.Getenv(EnvSMTPPassword),
		}, nil
	case "resend":
		return mailer.ResendConfig{
			APIKey:      os.Getenv(EnvResendAPIKey),
			SenderEmail: os.Getenv(EnvResendFrom),
		}, nil
	case "gmail":
		return mailer.GmailConfig{
			SenderEmail: os.Getenv(EnvGmailSender),
			AccessToken: os.Getenv(EnvGmailToken),
		}, nil
	default:
		return nil, fmt.Errorf("campaign: unknown provider kind %q", c.Provider.Kind)
	}
}

// Delay returns the pacing delay, or ok=false when the campaign does not
// override it.
func (c *Campaign) Delay() (time.Duration, bool) {
	if c.DelayMS < 0 {
		return 0, false
	}
	return time.Duration(c.DelayMS) * time.Millisecond, true
}
