// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package launch

import (
	"sort"
	"strings"
	"unicode"
)

type token struct {
	text   string
	quoted bool
}

func tokenize(s string) ([]token, error) {
	var (
		out    []token
		cur    strings.Builder
		inQ    bool
		quoted bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, token{text: cur.String(), quoted: quoted})
			cur.Reset()
			quoted = false
		}
	}
	for _, r := range s {
		switch {
		case inQ:
			cur.WriteRune(r)
			if r == '"' {
				inQ = false
			}
		case r == '"':
			cur.WriteRune(r)
			inQ = true
			quoted = true
		case r == '!':
			flush()
			out = append(out, token{text: "!"})
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQ {
		return nil, &SyntaxError{Token: len(out), Msg: "unterminated quote"}
	}
	flush()
	return out, nil
}

// isCaps reports whether tok is an inline caps string such as
// "video/x-raw,width=320". The media type must come before any field.
func isCaps(tok string) bool {
	head, _, _ := strings.Cut(tok, ",")
	return strings.Contains(head, "/") && !strings.Contains(head, "=")
}

func validFactory(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return false
		}
	}
	return unicode.IsLetter(rune(tok[0]))
}

func unquote(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
