// Package placeholders resolves ${NAME} and ${NAME:-default} spans in values.
//
// A value is tokenized into literal text and placeholders before anything is
// substituted. Each placeholder then resolves on its own: an override for its
// name wins, otherwise its embedded default, otherwise its raw text is kept
// so unresolved variables stay visible. Substituted text is never scanned
// again, so an override containing "${...}" is emitted as is.
package placeholders

import "strings"

const (
	open          = "${"
	closeBrace    = '}'
	defaultMarker = ":-"
)

// Placeholder is a single ${name} or ${name:-default} span.
type Placeholder struct {
	Name string

	// Default is nil when the placeholder has no ":-" part. An empty default is valid.
	Default *string

	// Raw is the exact source text of the span.
	Raw string
}

// Resolve applies the precedence override > default > raw text.
// The boolean reports whether the placeholder was satisfied.
func (p Placeholder) Resolve(overrides map[string]string) (string, bool) {
	if v, ok := overrides[p.Name]; ok {
		return v, true
	}
	if p.Default != nil {
		return *p.Default, true
	}
	return p.Raw, false
}

// Segment is either literal text or a placeholder.
type Segment struct {
	Text        string
	Placeholder *Placeholder
}

// Template is a tokenized value.
type Template []Segment

// Parse tokenizes s. An unterminated "${" or one without a valid name is literal text.
// The default text runs up to the first closing brace.
func Parse(s string) Template {
	var (
		t   Template
		lit strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			t = append(t, Segment{Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], open) {
			if p, n, ok := scan(s[i:]); ok {
				flush()
				t = append(t, Segment{Placeholder: &p})
				i += n
				continue
			}
		}
		lit.WriteByte(s[i])
		i++
	}
	flush()
	return t
}

// scan reads a placeholder at the start of s, returning it and its length.
func scan(s string) (Placeholder, int, bool) {
	end := strings.IndexByte(s, closeBrace)
	if end < 0 {
		return Placeholder{}, 0, false
	}

	name, def, hasDefault := strings.Cut(s[len(open):end], defaultMarker)
	if !validName(name) {
		return Placeholder{}, 0, false
	}

	p := Placeholder{Name: name, Raw: s[:end+1]}
	if hasDefault {
		p.Default = &def
	}
	return p, end + 1, true
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}

// Render substitutes every placeholder in one pass.
func (t Template) Render(overrides map[string]string) string {
	var b strings.Builder
	for _, seg := range t {
		if seg.Placeholder == nil {
			b.WriteString(seg.Text)
			continue
		}
		v, _ := seg.Placeholder.Resolve(overrides)
		b.WriteString(v)
	}
	return b.String()
}

// Unresolved lists the names of placeholders that neither an override nor a default satisfies.
func (t Template) Unresolved(overrides map[string]string) []string {
	var names []string
	for _, seg := range t {
		if seg.Placeholder == nil {
			continue
		}
		if _, ok := seg.Placeholder.Resolve(overrides); !ok {
			names = append(names, seg.Placeholder.Name)
		}
	}
	return names
}

// Apply parses value and renders it with overrides.
func Apply(value string, overrides map[string]string) string {
	if !strings.Contains(value, open) {
		return value
	}
	return Parse(value).Render(overrides)
}
