package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/publipost/publipost/pkg/mailer"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// DefaultImage reads the shared default image. An empty path means the
// campaign has none and yields nil without error.
func DefaultImage(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read default image: %w", err)
	}
	return data, nil
}

// AttachPersonalImages scans dir and attaches each image file to the
// recipient whose email or numero prefixes the filename. Files are visited
// in lexical order, so a recipient's images keep a stable order across
// runs. An empty dir is a no-op.
func AttachPersonalImages(dir string, recipients []*mailer.Recipient) error {
	if dir == "" {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read images directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		r := matchRecipient(entry.Name(), recipients)
		if r == nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read image %s: %w", entry.Name(), err)
		}
		r.Images = append(r.Images, mailer.Image{Name: entry.Name(), Data: data})
	}

	return nil
}

func matchRecipient(name string, recipients []*mailer.Recipient) *mailer.Recipient {
	lower := strings.ToLower(name)
	for _, r := range recipients {
		if r.Email != "" && strings.HasPrefix(lower, strings.ToLower(r.Email)) {
			return r
		}
		if r.Numero != "" && strings.HasPrefix(lower, strings.ToLower(r.Numero)+"_") {
			return r
		}
	}
	return nil
}
