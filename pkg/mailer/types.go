package mailer

// SendStatus tracks the delivery outcome for a recipient within a batch.
type SendStatus string

const (
	StatusPending SendStatus = "pending"
	StatusSuccess SendStatus = "success"
	StatusFailed  SendStatus = "failed"
)

// Recipient is one addressee of a campaign. Email doubles as the destination
// address and as the key used to match personal images during import.
//
// Status and Error are written only by the dispatcher: Error is non-empty
// only when Status is StatusFailed.
type Recipient struct {
	Email  string
	Nom    string
	Prenom string
	Numero string

	// Images are this recipient's own inline attachments, sent in order
	// after the campaign's shared default image.
	Images []Image

	Status SendStatus
	Error  string
}

// SetOutcome records a delivery outcome, keeping Status and Error consistent.
func (r *Recipient) SetOutcome(err error) {
	if err != nil {
		r.Status = StatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = StatusSuccess
	r.Error = ""
}

// Image is a named binary image attachment.
type Image struct {
	Name string
	Data []byte
}

// Template is a campaign's subject and body, both of which may contain
// placeholder tokens. It is read-only for the composer.
type Template struct {
	Subject string
	Body    string
}

// Email is the fully personalized, provider-agnostic message for one
// recipient, produced per send attempt and never persisted.
type Email struct {
	To      string
	Subject string
	Text    string // plain-text part, always the personalized body verbatim
	HTML    string // rich part referencing inline images by content ID
	Inline  []Attachment
}

// Attachment is an image attached for inline display. ContentID matches the
// cid: reference in the HTML part.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Content     []byte
}
