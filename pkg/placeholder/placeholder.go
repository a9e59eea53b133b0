// Package placeholder substitutes recipient fields into template strings.
//
// Templates carry literal tokens ({{nom}}, {{prenom}}, {{numero}}, {{email}})
// that are replaced globally with the matching field value. Replacement is a
// single pass: a field value that itself contains a token is never
// re-expanded, and tokens the package does not recognize pass through
// verbatim.
package placeholder

import "strings"

// Recognized tokens. The names are kept from the original campaign files,
// so existing templates keep working unchanged.
const (
	TokenNom    = "{{nom}}"
	TokenPrenom = "{{prenom}}"
	TokenNumero = "{{numero}}"
	TokenEmail  = "{{email}}"
)

// Fields holds the per-recipient values available to a template.
type Fields struct {
	Nom    string
	Prenom string
	Numero string
	Email  string
}

// Render replaces every occurrence of the recognized tokens in tmpl with the
// corresponding field value. It never fails; an empty template yields an
// empty string.
func Render(tmpl string, f Fields) string {
	if tmpl == "" {
		return ""
	}
	r := strings.NewReplacer(
		TokenNom, f.Nom,
		TokenPrenom, f.Prenom,
		TokenNumero, f.Numero,
		TokenEmail, f.Email,
	)
	return r.Replace(tmpl)
}
