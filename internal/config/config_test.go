package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publipost/publipost/internal/config"
	"github.com/publipost/publipost/pkg/mailer"
)

func writeCampaign(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeCampaign(t, `
template:
  subject: "Hi {{prenom}}"
  body: "Ref: {{numero}}"
recipients: recipients.csv
images:
  default: banner.png
provider:
  kind: smtp
  preset: gmail
delay_ms: 250
markdown: true
`)

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Hi {{prenom}}", c.Template.Subject)
	assert.Equal(t, "recipients.csv", c.Recipients)
	assert.Equal(t, "banner.png", c.Images.Default)
	assert.True(t, c.Markdown)

	delay, ok := c.Delay()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, delay)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing recipients",
			content: "provider:\n  kind: smtp\n",
		},
		{
			name:    "missing provider kind",
			content: "recipients: r.csv\n",
		},
		{
			name:    "body and body_file together",
			content: "recipients: r.csv\nprovider:\n  kind: smtp\ntemplate:\n  body: a\n  body_file: b.txt\n",
		},
		{
			name:    "not yaml",
			content: "{{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeCampaign(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DelayDefaultsWhenAbsent(t *testing.T) {
	t.Parallel()

	c, err := config.Load(writeCampaign(t, "recipients: r.csv\nprovider:\n  kind: smtp\n"))
	require.NoError(t, err)

	_, ok := c.Delay()
	assert.False(t, ok, "absent delay_ms must not override the default")
}

func TestResolveTemplate_BodyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	bodyPath := filepath.Join(dir, "body.txt")
	require.NoError(t, os.WriteFile(bodyPath, []byte("Bonjour {{prenom}}"), 0o644))

	c := &config.Campaign{Template: config.Template{Subject: "s", BodyFile: bodyPath}}
	tmpl, err := c.ResolveTemplate()
	require.NoError(t, err)
	assert.Equal(t, mailer.Template{Subject: "s", Body: "Bonjour {{prenom}}"}, tmpl)
}

func TestBuildProvider_SMTPPreset(t *testing.T) {
	t.Setenv(config.EnvSMTPEmail, "me@gmail.com")
	t.Setenv(config.EnvSMTPPassword, "app-password")

	c := &config.Campaign{Provider: config.Provider{Kind: "smtp", Preset: "gmail"}}
	cfg, err := c.BuildProvider()
	require.NoError(t, err)

	smtp, ok := cfg.(mailer.SMTPConfig)
	require.True(t, ok)
	assert.Equal(t, "smtp.gmail.com", smtp.Host)
	assert.Equal(t, 465, smtp.Port)
	assert.Equal(t, "me@gmail.com", smtp.Email)
	assert.Equal(t, "app-password", smtp.Password)
}

func TestBuildProvider_SMTPExplicitHost(t *testing.T) {
	t.Setenv(config.EnvSMTPEmail, "me@corp.com")
	t.Setenv(config.EnvSMTPPassword, "pw")

	c := &config.Campaign{Provider: config.Provider{Kind: "smtp", Host: "mail.corp.com"}}
	cfg, err := c.BuildProvider()
	require.NoError(t, err)

	smtp := cfg.(mailer.SMTPConfig)
	assert.Equal(t, "mail.corp.com", smtp.Host)
	assert.Equal(t, 587, smtp.Port, "port defaults to the submission port")
}

func TestBuildProvider_Resend(t *testing.T) {
	t.Setenv(config.EnvResendAPIKey, "re_123")
	t.Setenv(config.EnvResendFrom, "noreply@corp.com")

	c := &config.Campaign{Provider: config.Provider{Kind: "resend"}}
	cfg, err := c.BuildProvider()
	require.NoError(t, err)

	assert.Equal(t, mailer.ResendConfig{APIKey: "re_123", SenderEmail: "noreply@corp.com"}, cfg)
}

func TestBuildProvider_Unknown(t *testing.T) {
	t.Parallel()

	c := &config.Campaign{Provider: config.Provider{Kind: "pigeon"}}
	_, err := c.BuildProvider()
	assert.Error(t, err)
}

func TestBuildProvider_UnknownPreset(t *testing.T) {
	t.Parallel()

	c := &config.Campaign{Provider: config.Provider{Kind: "smtp", Preset: "minitel"}}
	_, err := c.BuildProvider()
	assert.Error(t, err)
}
