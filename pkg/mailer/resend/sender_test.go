package resend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/publipost/publipost/pkg/mailer"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want mailer.FailureKind
	}{
		{
			name: "unauthorized",
			err:  errors.New("[ERROR]: 401 Unauthorized"),
			want: mailer.FailureAuth,
		},
		{
			name: "invalid api key",
			err:  errors.New("Invalid API key"),
			want: mailer.FailureAuth,
		},
		{
			name: "validation error",
			err:  errors.New("[ERROR]: 422 validation_error: invalid `to` field"),
			want: mailer.FailureRejected,
		},
		{
			name: "rate limited",
			err:  errors.New("[ERROR]: 429 Too Many Requests"),
			want: mailer.FailureRejected,
		},
		{
			name: "network fault",
			err:  errors.New("dial tcp: lookup api.resend.com: no such host"),
			want: mailer.FailureConnection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			derr := classify(tt.err)
			assert.Equal(t, tt.want, derr.Kind)
		})
	}
}

func TestConvertAttachments(t *testing.T) {
	t.Parallel()

	inline := []mailer.Attachment{
		{Filename: "default.png", ContentType: "image/png", ContentID: "default_image", Content: []byte{1}},
		{Filename: "photo.jpg", ContentType: "image/jpeg", ContentID: "personal_0", Content: []byte{2}},
	}

	got := convertAttachments(inline)
	require.Len(t, got, 2)
	assert.Equal(t, "default_image", got[0].ContentId)
	assert.Equal(t, "image/png", got[0].ContentType)
	assert.Equal(t, []byte{2}, got[1].Content)
}
