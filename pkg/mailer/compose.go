package mailer

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/publipost/publipost/pkg/placeholder"
)

// Content IDs referenced by the HTML part. The default image always uses the
// same ID; personal images are numbered in their import order.
const (
	cidDefaultImage   = "default_image"
	cidPersonalPrefix = "personal_"

	defaultImageFilename = "default.png"
)

// Composer turns a template, a recipient and zero or more images into a
// provider-agnostic Email. Composing never fails; malformed or oversized
// content only surfaces later, when a transport adapter tries to deliver it.
type Composer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithMarkdown renders the personalized body to HTML through goldmark
// instead of the plain newline-to-<br> conversion. The text part still
// carries the raw personalized body.
func WithMarkdown() ComposerOption {
	return func(c *Composer) {
		c.md = goldmark.New()
	}
}

// WithFieldSanitization strips HTML from recipient field values before they
// are inserted into the HTML part, so a recipient name containing markup
// cannot malform the rendered message. The plain-text part always carries
// the values verbatim. Off by default to preserve the historical behavior of
// treating template and data as literal text.
func WithFieldSanitization() ComposerOption {
	return func(c *Composer) {
		c.policy = bluemonday.StrictPolicy()
	}
}

// NewComposer creates a Composer.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose builds the outgoing message for one recipient: personalized
// subject and body, a plain-text part equal to the personalized body, an
// HTML part referencing every image by content ID, and the inline
// attachments themselves. defaultImage may be nil or empty and personal may
// be empty; with no images the HTML carries no image tags and Inline is
// empty.
func (c *Composer) Compose(tmpl Template, r Recipient, defaultImage []byte, personal []Image) *Email {
	fields := recipientFields(r)

	subject := placeholder.Render(tmpl.Subject, fields)
	text := placeholder.Render(tmpl.Body, fields)

	htmlSource := text
	if c.policy != nil {
		htmlSource = placeholder.Render(tmpl.Body, c.sanitizeFields(fields))
	}

	email := &Email{
		To:      r.Email,
		Subject: subject,
		Text:    text,
	}

	if len(defaultImage) > 0 {
		email.Inline = append(email.Inline, Attachment{
			Filename:    defaultImageFilename,
			ContentType: "image/png",
			ContentID:   cidDefaultImage,
			Content:     defaultImage,
		})
	}
	for i, img := range personal {
		email.Inline = append(email.Inline, Attachment{
			Filename:    img.Name,
			ContentType: imageContentType(img.Name),
			ContentID:   fmt.Sprintf("%s%d", cidPersonalPrefix, i),
			Content:     img.Data,
		})
	}

	email.HTML = c.buildHTML(htmlSource, email.Inline)
	return email
}

// PreviewHTML renders the personalized body the way the HTML part will look,
// with textual markers in place of the actual images. Intended for a
// frontend preview pane; the markers never appear in sent mail.
func (c *Composer) PreviewHTML(tmpl Template, r Recipient, hasDefaultImage bool, personalCount int) string {
	body := placeholder.Render(tmpl.Body, recipientFields(r))

	var markers strings.Builder
	if hasDefaultImage {
		markers.WriteString("<br><p style='color: #3b82f6;'><strong>[Image par defaut]</strong></p>")
	}
	if personalCount > 0 {
		fmt.Fprintf(&markers, "<br><p style='color: #10b981;'><strong>[%d image(s) personnalisee(s)]</strong></p>", personalCount)
	}

	return fmt.Sprintf("<div style=\"font-family: Arial, sans-serif; line-height: 1.6;\">\n%s\n</div>\n%s",
		c.renderBody(body), markers.String())
}

func (c *Composer) buildHTML(body string, inline []Attachment) string {
	var imgTags strings.Builder
	for _, att := range inline {
		fmt.Fprintf(&imgTags, "<br><img src='cid:%s' style='max-width: 600px;'>", att.ContentID)
	}

	return fmt.Sprintf("<html><body>\n<div style=\"font-family: Arial, sans-serif; line-height: 1.6;\">\n%s\n</div>\n%s\n</body></html>",
		c.renderBody(body), imgTags.String())
}

// renderBody converts the personalized body to HTML: markdown when enabled,
// otherwise a literal newline-to-<br> conversion.
func (c *Composer) renderBody(body string) string {
	if c.md != nil {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(body), &buf); err == nil {
			return strings.TrimRight(buf.String(), "\n")
		}
		// Markdown conversion is best-effort; fall back to literal text.
	}
	return strings.ReplaceAll(body, "\n", "<br>")
}

func (c *Composer) sanitizeFields(f placeholder.Fields) placeholder.Fields {
	return placeholder.Fields{
		Nom:    c.policy.Sanitize(f.Nom),
		Prenom: c.policy.Sanitize(f.Prenom),
		Numero: c.policy.Sanitize(f.Numero),
		Email:  c.policy.Sanitize(f.Email),
	}
}

func recipientFields(r Recipient) placeholder.Fields {
	return placeholder.Fields{
		Nom:    r.Nom,
		Prenom: r.Prenom,
		Numero: r.Numero,
		Email:  r.Email,
	}
}

// imageContentType guesses the MIME type from the filename extension,
// defaulting to image/png which is what campaign imports produce.
func imageContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
