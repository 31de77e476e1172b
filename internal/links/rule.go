package links

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule decides whether an href names a target file.
//
// A value is a target when it contains at least one marker and ends with
// one of the extensions. A marker only counts when the character after it is
// not a letter or a digit, so the marker "Anexo_I" matches "Anexo_I_Rol.pdf"
// and "Anexo_I.pdf" but not "Anexo_III.pdf".
//
// Example:
//
//	rule := NewRule([]string{"Anexo_I", "Anexo_II"}, []string{"pdf", "xlsx"}, false)
//	rule.IsTargetFile("/media/Anexo_I_Rol.pdf") // true
//	rule.IsTargetFile("/media/Anexo_III.pdf")   // false
//	rule.IsTargetFile("/media/Anexo_I.txt")     // false
type Rule struct {
	markers         []string
	extensions      []string
	caseInsensitive bool
}

// NewRule creates a Rule. Extensions may be given with or without the leading
// dot. Blank markers and extensions are ignored.
func NewRule(markers, extensions []string, caseInsensitive bool) *Rule {
	r := &Rule{caseInsensitive: caseInsensitive}
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			r.markers = append(r.markers, r.fold(m))
		}
	}
	for _, e := range extensions {
		e = strings.TrimPrefix(strings.TrimSpace(e), ".")
		if e != "" {
			r.extensions = append(r.extensions, "."+r.fold(e))
		}
	}
	return r
}

// IsTargetFile reports whether href contains a marker and ends with an
// accepted extension.
func (r *Rule) IsTargetFile(href string) bool {
	return r.HasAnyMarker(href) && r.HasAnyExtension(href)
}

// HasAnyMarker reports whether name contains one of the markers followed by
// a non-alphanumeric character or the end of the string.
func (r *Rule) HasAnyMarker(name string) bool {
	name = r.fold(name)
	for _, marker := range r.markers {
		if containsBounded(name, marker) {
			return true
		}
	}
	return false
}

// HasAnyExtension reports whether name ends with one of the extensions.
func (r *Rule) HasAnyExtension(name string) bool {
	name = r.fold(name)
	for _, ext := range r.extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}

func (r *Rule) fold(s string) string {
	if r.caseInsensitive {
		return strings.ToLower(s)
	}
	return s
}

func containsBounded(s, marker string) bool {
	for offset := 0; offset <= len(s)-len(marker); {
		i := strings.Index(s[offset:], marker)
		if i == -1 {
			return false
		}
		end := offset + i + len(marker)
		if end == len(s) {
			return true
		}
		next, _ := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsLetter(next) && !unicode.IsDigit(next) {
			return true
		}
		offset += i + 1
	}
	return false
}
