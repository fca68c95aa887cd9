// SPDX-License-Identifier: GPL-2.0-or-later

package maploader

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokLBrace
	tokRBrace
	tokAssign
	tokSemi
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

// lexUDMF splits a TEXTMAP lump body into the small token set UDMF needs:
// identifiers/keywords, numeric literals, quoted strings, and the four
// punctuation marks '{', '}', '=', ';'. Comments ("//" to end of line and
// "/* ... */") are discarded, matching the UDMF spec's grammar.
func lexUDMF(src string) ([]token, error) {
	var toks []token
	i := 0
	n := len(src)

	for i < n {
		c := src[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++

		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("maploader: unterminated block comment")
			}
			i += end + 4

		case c == '{':
			toks = append(toks, token{tokLBrace, "{"})
			i++

		case c == '}':
			toks = append(toks, token{tokRBrace, "}"})
			i++

		case c == '=':
			toks = append(toks, token{tokAssign, "="})
			i++

		case c == ';':
			toks = append(toks, token{tokSemi, ";"})
			i++

		case c == '"':
			j := i + 1
			var sb strings.Builder
			for j < n && src[j] != '"' {
				if src[j] == '\\' && j+1 < n {
					j++
				}
				sb.WriteByte(src[j])
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("maploader: unterminated string literal")
			}
			toks = append(toks, token{tokString, sb.String()})
			i = j + 1

		case isIdentStart(c):
			j := i + 1
			for j < n && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j

		case isNumberStart(c):
			j := i + 1
			for j < n && isNumberPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j

		default:
			return nil, fmt.Errorf("maploader: unexpected byte %q at offset %d", c, i)
		}
	}

	toks = append(toks, token{tokEOF, ""})
	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func isNumberPart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' || c == '-' || c == '+' ||
		c == 'x' || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}
