// Package author matches fetched Zotero records to configured authors.
package author

import (
	"strings"

	"github.com/herkuenfte/zotpdf/internal/zotero"
)

// Rule names the comparison that credited a record to an author.
type Rule string

// Matching rules, in precedence order.
const (
	RuleFullName  Rule = "full_name"
	RuleLastName  Rule = "last_name"
	RuleSubstring Rule = "substring"
)

// normalize lower-cases and trims a name. No diacritic folding is done.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// matchCreator checks a creator against identifiers in order and returns the
// first identifier that matches together with the rule that matched it.
//
// For each identifier, in order:
//   - "Jane Doe" equals the full name
//   - "Doe"      equals the last name
//   - "ane Do"   occurs anywhere in the full name
//
// The substring rule is deliberately broad: a short identifier such as "an"
// matches "Jane Doe" and "Ann Smith" alike. Blank identifiers never match.
func matchCreator(c zotero.Creator, identifiers []string) (string, Rule, bool) {
	fullName := normalize(c.FullName())
	lastName := normalize(c.LastName)

	for _, identifier := range identifiers {
		id := normalize(identifier)
		if id == "" {
			continue
		}

		if id == fullName {
			return identifier, RuleFullName, true
		}
		if id == lastName {
			return identifier, RuleLastName, true
		}
		if strings.Contains(fullName, id) {
			return identifier, RuleSubstring, true
		}
	}

	return "", "", false
}
