package lineage

import (
	"fmt"
	"strings"
)

// Profile names the syntax node kinds the walker classifies for one grammar.
type Profile struct {
	Language string

	// DeclaratorKinds introduce a named binding; the bound name is read from
	// DeclaratorNameField.
	DeclaratorKinds     []string
	DeclaratorNameField string
	// DeclaratorNameFields overrides DeclaratorNameField per declarator kind.
	DeclaratorNameFields map[string]string
	// NameListKinds are name nodes holding several names; each direct child
	// of an identifier kind is declared.
	NameListKinds []string

	// IdentifierKinds are bare name occurrences.
	IdentifierKinds []string

	// ScopeKinds contribute ScopeNameField's text to scope paths.
	ScopeKinds     []string
	ScopeNameField string
}

// ProfileOverride patches a built-in profile. Empty fields keep the default.
type ProfileOverride struct {
	DeclaratorKinds     []string
	DeclaratorNameField string
	IdentifierKinds     []string
	ScopeKinds          []string
	ScopeNameField      string
}

var javascriptProfile = Profile{
	Language:            "javascript",
	DeclaratorKinds:     []string{"variable_declarator"},
	DeclaratorNameField: "name",
	IdentifierKinds:     []string{"identifier"},
	ScopeKinds:          []string{"function_declaration", "method_definition", "class_declaration"},
	ScopeNameField:      "name",
}

func typescriptProfile(language string) Profile {
	return Profile{
		Language:            language,
		DeclaratorKinds:     []string{"variable_declarator"},
		DeclaratorNameField: "name",
		IdentifierKinds:     []string{"identifier"},
		ScopeKinds: []string{
			"function_declaration", "method_definition", "class_declaration",
			"abstract_class_declaration", "interface_declaration",
		},
		ScopeNameField: "name",
	}
}

// DefaultProfiles returns the built-in profiles keyed by language id.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"javascript": javascriptProfile.clone(),
		"typescript": typescriptProfile("typescript"),
		"tsx":        typescriptProfile("tsx"),
		"java": {
			Language:            "java",
			DeclaratorKinds:     []string{"variable_declarator"},
			DeclaratorNameField: "name",
			IdentifierKinds:     []string{"identifier"},
			ScopeKinds:          []string{"method_declaration", "constructor_declaration", "class_declaration", "interface_declaration"},
			ScopeNameField:      "name",
		},
		"go": {
			Language:            "go",
			DeclaratorKinds:     []string{"var_spec", "const_spec", "short_var_declaration"},
			DeclaratorNameField: "name",
			DeclaratorNameFields: map[string]string{
				"short_var_declaration": "left",
			},
			NameListKinds:   []string{"expression_list"},
			IdentifierKinds: []string{"identifier"},
			ScopeKinds:      []string{"function_declaration", "method_declaration"},
			ScopeNameField:  "name",
		},
		"python": {
			Language:            "python",
			DeclaratorKinds:     []string{"assignment"},
			DeclaratorNameField: "left",
			IdentifierKinds:     []string{"identifier"},
			ScopeKinds:          []string{"function_definition", "class_definition"},
			ScopeNameField:      "name",
		},
		"rust": {
			Language:            "rust",
			DeclaratorKinds:     []string{"let_declaration"},
			DeclaratorNameField: "pattern",
			IdentifierKinds:     []string{"identifier"},
			ScopeKinds:          []string{"function_item", "struct_item", "trait_item", "mod_item"},
			ScopeNameField:      "name",
		},
	}
}

// ProfileFor returns the built-in profile for a language id.
func ProfileFor(language string) (Profile, bool) {
	p, ok := DefaultProfiles()[strings.ToLower(strings.TrimSpace(language))]
	return p, ok
}

// Apply returns a copy of p with the non-empty override fields replaced.
func (p Profile) Apply(o ProfileOverride) Profile {
	out := p.clone()
	if len(o.DeclaratorKinds) > 0 {
		out.DeclaratorKinds = append([]string(nil), o.DeclaratorKinds...)
	}
	if strings.TrimSpace(o.DeclaratorNameField) != "" {
		out.DeclaratorNameField = strings.TrimSpace(o.DeclaratorNameField)
	}
	if len(o.IdentifierKinds) > 0 {
		out.IdentifierKinds = append([]string(nil), o.IdentifierKinds...)
	}
	if len(o.ScopeKinds) > 0 {
		out.ScopeKinds = append([]string(nil), o.ScopeKinds...)
	}
	if strings.TrimSpace(o.ScopeNameField) != "" {
		out.ScopeNameField = strings.TrimSpace(o.ScopeNameField)
	}
	return out
}

// NameField returns the field holding the bound name for a declarator kind.
func (p Profile) NameField(kind string) string {
	if field := strings.TrimSpace(p.DeclaratorNameFields[kind]); field != "" {
		return field
	}
	return p.DeclaratorNameField
}

// Validate rejects profiles the walker cannot classify unambiguously.
func (p Profile) Validate() error {
	if len(p.DeclaratorKinds) == 0 {
		return fmt.Errorf("profile %q: declarator kinds must not be empty", p.Language)
	}
	if len(p.IdentifierKinds) == 0 {
		return fmt.Errorf("profile %q: identifier kinds must not be empty", p.Language)
	}
	if strings.TrimSpace(p.DeclaratorNameField) == "" {
		return fmt.Errorf("profile %q: declarator name field must not be empty", p.Language)
	}
	if len(p.ScopeKinds) > 0 && strings.TrimSpace(p.ScopeNameField) == "" {
		return fmt.Errorf("profile %q: scope name field must not be empty", p.Language)
	}
	declarators := newKindSet(p.DeclaratorKinds)
	for _, kind := range p.IdentifierKinds {
		if declarators.has(kind) {
			return fmt.Errorf("profile %q: kind %q is both a declarator and an identifier", p.Language, kind)
		}
	}
	return nil
}

func (p Profile) clone() Profile {
	out := p
	out.DeclaratorKinds = append([]string(nil), p.DeclaratorKinds...)
	out.IdentifierKinds = append([]string(nil), p.IdentifierKinds...)
	out.ScopeKinds = append([]string(nil), p.ScopeKinds...)
	out.NameListKinds = append([]string(nil), p.NameListKinds...)
	if p.DeclaratorNameFields != nil {
		out.DeclaratorNameFields = make(map[string]string, len(p.DeclaratorNameFields))
		for kind, field := range p.DeclaratorNameFields {
			out.DeclaratorNameFields[kind] = field
		}
	}
	return out
}

type kindSet map[string]struct{}

func newKindSet(kinds []string) kindSet {
	set := make(kindSet, len(kinds))
	for _, kind := range kinds {
		kind = strings.TrimSpace(kind)
		if kind != "" {
			set[kind] = struct{}{}
		}
	}
	return set
}

func (s kindSet) has(kind string) bool {
	_, ok := s[kind]
	return ok
}
