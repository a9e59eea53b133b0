package mailer

import "fmt"

// ProviderConfig is the closed set of delivery backends. The dispatcher
// selects the transport adapter with a single type switch over this
// interface; no other implementations exist outside this package.
//
// A config is built fresh per send operation and treated as immutable once a
// batch has started.
type ProviderConfig interface {
	// Validate reports ErrInvalidConfig when required fields are missing.
	Validate() error
	// SenderAddress is the address mail is sent from, also used as the
	// destination of test sends.
	SenderAddress() string

	isProvider()
}

// SMTPConfig delivers through a mail submission server. Port 465 uses
// implicit TLS; any other port starts in cleartext and upgrades via
// STARTTLS before authenticating.
type SMTPConfig struct {
	Host     string
	Port     int
	Email    string
	Password string
}

func (c SMTPConfig) Validate() error {
	if c.Host == "" || c.Email == "" || c.Password == "" {
		return fmt.Errorf("%w: smtp host, email and password are required", ErrInvalidConfig)
	}
	return nil
}

func (c SMTPConfig) SenderAddress() string { return c.Email }
func (SMTPConfig) isProvider()             {}

// ResendConfig delivers through the Resend transactional email API.
type ResendConfig struct {
	APIKey      string
	SenderEmail string
}

func (c ResendConfig) Validate() error {
	if c.APIKey == "" || c.SenderEmail == "" {
		return fmt.Errorf("%w: resend api key and sender email are required", ErrInvalidConfig)
	}
	return nil
}

func (c ResendConfig) SenderAddress() string { return c.SenderEmail }
func (ResendConfig) isProvider()             {}

// GmailConfig delivers by submitting the raw MIME message to the Gmail API
// (users.messages.send) with an OAuth bearer token.
type GmailConfig struct {
	SenderEmail string
	AccessToken string
	// Endpoint overrides the Gmail API URL, mainly for tests.
	Endpoint string
}

func (c GmailConfig) Validate() error {
	if c.SenderEmail == "" || c.AccessToken == "" {
		return fmt.Errorf("%w: gmail sender email and access token are required", ErrInvalidConfig)
	}
	return nil
}

func (c GmailConfig) SenderAddress() string { return c.SenderEmail }
func (GmailConfig) isProvider()             {}

// SMTPPreset is a well-known submission host/port pair.
type SMTPPreset struct {
	Host string
	Port int
}

// SMTPPresets maps provider names accepted in campaign files to their
// submission endpoints.
var SMTPPresets = map[string]SMTPPreset{
	"gmail":   {Host: "smtp.gmail.com", Port: 465},
	"outlook": {Host: "smtp-mail.outlook.com", Port: 587},
	"yahoo":   {Host: "smtp.mail.yahoo.com", Port: 465},
}
