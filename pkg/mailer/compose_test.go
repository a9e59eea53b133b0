package mailer_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publipost/publipost/pkg/mailer"
)

func testRecipient() mailer.Recipient {
	return mailer.Recipient{
		Email:  "jean.dupont@example.com",
		Nom:    "Dupont",
		Prenom: "Jean",
		Numero: "42",
	}
}

func TestCompose_Personalization(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{
		Subject: "Hi {{prenom}}",
		Body:    "Bonjour {{prenom}} {{nom}},\nRef: {{numero}}",
	}

	email := mailer.NewComposer().Compose(tmpl, testRecipient(), nil, nil)

	assert.Equal(t, "jean.dupont@example.com", email.To)
	assert.Equal(t, "Hi Jean", email.Subject)
	assert.Equal(t, "Bonjour Jean Dupont,\nRef: 42", email.Text)
	assert.Contains(t, email.HTML, "Bonjour Jean Dupont,<br>Ref: 42")
}

func TestCompose_ZeroImages(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{Subject: "s", Body: "b"}
	email := mailer.NewComposer().Compose(tmpl, testRecipient(), nil, nil)

	assert.Empty(t, email.Inline)
	assert.NotContains(t, email.HTML, "<img")
	assert.NotContains(t, email.HTML, "cid:")
}

// An empty byte slice means "no default image" just like nil does; it must
// not produce a zero-length inline part.
func TestCompose_EmptyDefaultImage(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{Subject: "s", Body: "b"}
	email := mailer.NewComposer().Compose(tmpl, testRecipient(), []byte{}, nil)

	assert.Empty(t, email.Inline)
	assert.NotContains(t, email.HTML, "cid:")
}

func TestCompose_DefaultAndPersonalImages(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{Subject: "s", Body: "b"}
	personal := []mailer.Image{
		{Name: "first.jpg", Data: []byte{1}},
		{Name: "second.png", Data: []byte{2}},
	}

	email := mailer.NewComposer().Compose(tmpl, testRecipient(), []byte{0}, personal)

	require.Len(t, email.Inline, 3)
	assert.Equal(t, 3, strings.Count(email.HTML, "<img"))

	// Content IDs are distinct, match the HTML references, and are flagged
	// for inline display via their content type tagging.
	seen := map[string]bool{}
	for _, att := range email.Inline {
		assert.False(t, seen[att.ContentID], "duplicate content id %s", att.ContentID)
		seen[att.ContentID] = true
		assert.Contains(t, email.HTML, fmt.Sprintf("cid:%s", att.ContentID))
	}

	assert.Equal(t, "default_image", email.Inline[0].ContentID)
	assert.Equal(t, "default.png", email.Inline[0].Filename)
	assert.Equal(t, "image/png", email.Inline[0].ContentType)

	assert.Equal(t, "personal_0", email.Inline[1].ContentID)
	assert.Equal(t, "first.jpg", email.Inline[1].Filename)
	assert.Equal(t, "image/jpeg", email.Inline[1].ContentType)

	assert.Equal(t, "personal_1", email.Inline[2].ContentID)
}

// The plain-text part carries the personalized body verbatim, with no HTML
// markup, whatever the image situation is.
func TestCompose_TextPartVerbatim(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{Subject: "s", Body: "line one\nline two {{prenom}}"}
	email := mailer.NewComposer().Compose(tmpl, testRecipient(), []byte{0}, nil)

	assert.Equal(t, "line one\nline two Jean", email.Text)
	assert.NotContains(t, email.Text, "<")
}

func TestCompose_Markdown(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{Subject: "s", Body: "Hello **{{prenom}}**"}
	email := mailer.NewComposer(mailer.WithMarkdown()).Compose(tmpl, testRecipient(), nil, nil)

	assert.Contains(t, email.HTML, "<strong>Jean</strong>")
	// Text part stays the raw personalized body.
	assert.Equal(t, "Hello **Jean**", email.Text)
}

func TestCompose_FieldSanitization(t *testing.T) {
	t.Parallel()

	r := testRecipient()
	r.Prenom = "<script>alert(1)</script>Jean"
	tmpl := mailer.Template{Subject: "s", Body: "Hi {{prenom}}"}

	email := mailer.NewComposer(mailer.WithFieldSanitization()).Compose(tmpl, r, nil, nil)

	assert.NotContains(t, email.HTML, "<script>")
	assert.Contains(t, email.HTML, "Jean")
	// Text part is never sanitized.
	assert.Equal(t, "Hi <script>alert(1)</script>Jean", email.Text)
}

// Source behavior without the option: values pass through unescaped.
func TestCompose_NoSanitizationByDefault(t *testing.T) {
	t.Parallel()

	r := testRecipient()
	r.Prenom = "<b>Jean</b>"
	tmpl := mailer.Template{Subject: "s", Body: "Hi {{prenom}}"}

	email := mailer.NewComposer().Compose(tmpl, r, nil, nil)
	assert.Contains(t, email.HTML, "<b>Jean</b>")
}

func TestPreviewHTML(t *testing.T) {
	t.Parallel()

	tmpl := mailer.Template{Subject: "s", Body: "Bonjour {{prenom}}"}
	c := mailer.NewComposer()

	html := c.PreviewHTML(tmpl, testRecipient(), true, 2)
	assert.Contains(t, html, "Bonjour Jean")
	assert.Contains(t, html, "[Image par defaut]")
	assert.Contains(t, html, "[2 image(s) personnalisee(s)]")

	plain := c.PreviewHTML(tmpl, testRecipient(), false, 0)
	assert.NotContains(t, plain, "[Image par defaut]")
	assert.NotContains(t, plain, "image(s) personnalisee(s)")
}
