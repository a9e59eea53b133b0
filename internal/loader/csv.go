// Package loader imports recipient lists and images from disk. It is the
// minimal realization of the import layer the engine treats as an external
// collaborator: simple I/O, validated just enough to fail with usable
// messages before a batch starts.
package loader

import (
	"encoding/csv"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/publipost/publipost/pkg/mailer"
)

// Recipients reads a CSV file with columns email, nom, prenom, numero.
// A header row is detected by an "email" cell and skipped. Missing trailing
// columns are treated as empty; a row without a valid email address fails
// the whole import with its line number.
func Recipients(path string) ([]*mailer.Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipients file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipients file: %w", err)
	}

	var recipients []*mailer.Recipient
	for i, row := range rows {
		if len(row) == 0 || allEmpty(row) {
			continue
		}
		if i == 0 && isHeader(row) {
			continue
		}

		email := strings.TrimSpace(field(row, 0))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, fmt.Errorf("recipients file line %d: invalid email %q", i+1, email)
		}

		recipients = append(recipients, &mailer.Recipient{
			Email:  email,
			Nom:    strings.TrimSpace(field(row, 1)),
			Prenom: strings.TrimSpace(field(row, 2)),
			Numero: strings.TrimSpace(field(row, 3)),
			Status: mailer.StatusPending,
		})
	}

	return recipients, nil
}

func isHeader(row []string) bool {
	for _, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), "email") {
			return true
		}
	}
	return false
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func allEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
