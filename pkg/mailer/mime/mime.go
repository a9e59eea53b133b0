// Package mime builds the RFC 5322 representation of a composed email,
// shared by the transports that submit raw messages (direct SMTP and the
// Gmail API). The resulting structure nests as
// multipart/mixed(multipart/alternative(text/plain, multipart/related(
// text/html, inline images))), which is what strict corporate filters and
// Outlook expect: a real plain-text part first, the rich version with
// inline images second.
package mime

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/publipost/publipost/pkg/mailer"
)

// Build translates a composed email into a go-mail message with the full
// header set strict filters require: From, To, Subject, Date, a unique
// Message-ID derived from the sender's domain, and the MIME version marker.
// The body is assembled part by part rather than left to go-mail, which
// would flatten the nesting to related(alternative, images).
func Build(from string, email *mailer.Email) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.From(from); err != nil {
		return nil, mailer.NewDeliveryError(mailer.FailureLocal, "invalid sender address "+from, err)
	}
	if err := m.To(email.To); err != nil {
		return nil, mailer.NewDeliveryError(mailer.FailureLocal, "invalid recipient address "+email.To, err)
	}

	m.Subject(email.Subject)
	m.SetDate()
	m.SetMessageIDWithValue(MessageID(from))

	body, boundary, err := multipartBody(email)
	if err != nil {
		return nil, mailer.NewDeliveryError(mailer.FailureLocal, "failed to assemble message body", err)
	}

	m.SetBodyWriter(
		mail.ContentType(fmt.Sprintf("multipart/mixed; boundary=%q", boundary)),
		func(w io.Writer) (int64, error) {
			n, err := w.Write(body)
			return int64(n), err
		},
		mail.WithPartEncoding(mail.NoEncoding),
	)

	return m, nil
}

// multipartBody renders the nested body and returns it with the outermost
// boundary, which the caller must carry in the message Content-Type.
func multipartBody(email *mailer.Email) ([]byte, string, error) {
	var buf bytes.Buffer
	mixed := multipart.NewWriter(&buf)

	alternative, err := nestedWriter(mixed, "multipart/alternative")
	if err != nil {
		return nil, "", err
	}

	text, err := alternative.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, "", err
	}
	if _, err := io.WriteString(text, email.Text); err != nil {
		return nil, "", err
	}

	related, err := nestedWriter(alternative, "multipart/related")
	if err != nil {
		return nil, "", err
	}

	html, err := related.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=UTF-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, "", err
	}
	if _, err := io.WriteString(html, email.HTML); err != nil {
		return nil, "", err
	}

	for _, att := range email.Inline {
		if err := writeInline(related, att); err != nil {
			return nil, "", err
		}
	}

	if err := related.Close(); err != nil {
		return nil, "", err
	}
	if err := alternative.Close(); err != nil {
		return nil, "", err
	}
	if err := mixed.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mixed.Boundary(), nil
}

// nestedWriter opens a multipart container as a part of parent. The boundary
// must be generated up front so it can appear in the part's own header.
func nestedWriter(parent *multipart.Writer, mediaType string) (*multipart.Writer, error) {
	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")
	part, err := parent.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("%s; boundary=%q", mediaType, boundary)},
	})
	if err != nil {
		return nil, err
	}
	w := multipart.NewWriter(part)
	if err := w.SetBoundary(boundary); err != nil {
		return nil, err
	}
	return w, nil
}

func writeInline(related *multipart.Writer, att mailer.Attachment) error {
	part, err := related.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("%s; name=%q", att.ContentType, att.Filename)},
		"Content-Transfer-Encoding": {"base64"},
		"Content-ID":                {"<" + att.ContentID + ">"},
		"Content-Disposition":       {fmt.Sprintf("inline; filename=%q", att.Filename)},
	})
	if err != nil {
		return err
	}

	encoded := base64.StdEncoding.EncodeToString(att.Content)
	for len(encoded) > 0 {
		line := min(76, len(encoded))
		if _, err := io.WriteString(part, encoded[:line]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[line:]
	}
	return nil
}

// Raw renders the complete message to its wire bytes.
func Raw(m *mail.Msg) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, mailer.NewDeliveryError(mailer.FailureLocal, "failed to render message", err)
	}
	return buf.Bytes(), nil
}

// MessageID generates a unique Message-ID value scoped to the sender's
// domain, e.g. "7f9c…@example.com".
func MessageID(from string) string {
	domain := from
	if i := strings.LastIndex(from, "@"); i >= 0 {
		domain = from[i+1:]
	}
	return fmt.Sprintf("%s@%s", uuid.NewString(), domain)
}
