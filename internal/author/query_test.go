package author

import (
	"testing"

	"github.com/herkuenfte/zotpdf/internal/zotero"
)

func TestMatchCreator(t *testing.T) {
	jane := zotero.Creator{CreatorType: "author", FirstName: "Jane", LastName: "Doe"}

	tests := []struct {
		name        string
		creator     zotero.Creator
		identifiers []string
		wantID      string
		wantRule    Rule
		wantOK      bool
	}{
		{
			name:        "full name exact",
			creator:     jane,
			identifiers: []string{"Jane Doe"},
			wantID:      "Jane Doe",
			wantRule:    RuleFullName,
			wantOK:      true,
		},
		{
			name:        "case and whitespace ignored",
			creator:     zotero.Creator{FirstName: "jane", LastName: "DOE"},
			identifiers: []string{" Jane Doe "},
			wantID:      " Jane Doe ",
			wantRule:    RuleFullName,
			wantOK:      true,
		},
		{
			name:        "last name only",
			creator:     jane,
			identifiers: []string{"Doe"},
			wantID:      "Doe",
			wantRule:    RuleLastName,
			wantOK:      true,
		},
		{
			name:        "last name matches any first name",
			creator:     zotero.Creator{FirstName: "John", LastName: "Doe"},
			identifiers: []string{"doe"},
			wantID:      "doe",
			wantRule:    RuleLastName,
			wantOK:      true,
		},
		{
			name:        "substring across first and last",
			creator:     jane,
			identifiers: []string{"ane Do"},
			wantID:      "ane Do",
			wantRule:    RuleSubstring,
			wantOK:      true,
		},
		{
			name:        "single letter identifier matches by substring",
			creator:     jane,
			identifiers: []string{"e"},
			wantID:      "e",
			wantRule:    RuleSubstring,
			wantOK:      true,
		},
		{
			name:        "short identifier hits an unrelated name",
			creator:     zotero.Creator{FirstName: "Dorothea", LastName: "Anders"},
			identifiers: []string{"And"},
			wantID:      "And",
			wantRule:    RuleSubstring,
			wantOK:      true,
		},
		{
			name:        "first identifier wins even with weaker rule",
			creator:     jane,
			identifiers: []string{"Doe", "Jane Doe"},
			wantID:      "Doe",
			wantRule:    RuleLastName,
			wantOK:      true,
		},
		{
			name:        "no match",
			creator:     jane,
			identifiers: []string{"Smith", "Janet"},
			wantOK:      false,
		},
		{
			name:        "no diacritic folding",
			creator:     zotero.Creator{FirstName: "Jürgen", LastName: "Müller"},
			identifiers: []string{"Muller"},
			wantOK:      false,
		},
		{
			name:        "blank identifier never matches",
			creator:     zotero.Creator{},
			identifiers: []string{"", "   "},
			wantOK:      false,
		},
		{
			name:        "empty creator does not match a real identifier",
			creator:     zotero.Creator{},
			identifiers: []string{"Doe"},
			wantOK:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rule, ok := matchCreator(tt.creator, tt.identifiers)
			if ok != tt.wantOK {
				t.Fatalf("matchCreator() ok = %v, want %v", ok, tt.wantOK)
			}
			if id != tt.wantID {
				t.Errorf("matchCreator() identifier = %q, want %q", id, tt.wantID)
			}
			if rule != tt.wantRule {
				t.Errorf("matchCreator() rule = %q, want %q", rule, tt.wantRule)
			}
		})
	}
}
