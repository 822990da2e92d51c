package tag

import (
	"strconv"
	"strings"
)

// Delimiter separates tokens in the tag text syntax.
const Delimiter = ':'

// dateWidth is the length of a DD-MM-YYYY token.
const dateWidth = len("DD-MM-YYYY")

// FromText decodes a delimiter-separated run of tokens into a Tag. The first
// token in the text becomes the head, so "2000:22-04-2020:ghg" is
// Of(Number(2000), Date(22, 4, 2020), Text("ghg")).
//
// Each token is tried as a date, then as a number, and otherwise kept as
// text. A single trailing delimiter is ignored; empty tokens between
// delimiters decode as empty text. The empty string decodes to Nil.
// Decoding never fails.
func FromText(s string) Tag {
	var items []TagType
	for s != "" {
		var v TagType
		if d, rest, ok := decodeDate(s); ok {
			v, s = d, rest
		} else if n, rest, ok := decodeNumber(s); ok {
			v, s = n, rest
		} else {
			v, s = decodeText(s)
		}
		items = append(items, v)
	}
	return Of(items...)
}

// decodeDate reads a fixed-width DD-MM-YYYY token that is followed by the
// delimiter or the end of s. rest is s after the token and its delimiter.
func decodeDate(s string) (v TagType, rest string, ok bool) {
	if len(s) < dateWidth {
		return TagType{}, s, false
	}
	if len(s) > dateWidth && s[dateWidth] != Delimiter {
		return TagType{}, s, false
	}
	if s[2] != '-' || s[5] != '-' {
		return TagType{}, s, false
	}
	day, ok1 := digits(s[0:2])
	month, ok2 := digits(s[3:5])
	year, ok3 := digits(s[6:10])
	if !ok1 || !ok2 || !ok3 {
		return TagType{}, s, false
	}
	return Date(uint8(day), uint8(month), year), skipDelimiter(s[dateWidth:]), true
}

// decodeNumber reads a signed 32-bit integer token terminated by the
// delimiter or the end of s.
func decodeNumber(s string) (v TagType, rest string, ok bool) {
	token, rest := splitToken(s)
	n, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return TagType{}, s, false
	}
	return Number(int32(n)), rest, true
}

func decodeText(s string) (v TagType, rest string) {
	token, rest := splitToken(s)
	return Text(token), rest
}

// splitToken cuts s at the first delimiter, dropping the delimiter itself.
func splitToken(s string) (token, rest string) {
	if i := strings.IndexByte(s, Delimiter); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func skipDelimiter(s string) string {
	if s != "" && s[0] == Delimiter {
		return s[1:]
	}
	return s
}

// digits parses an all-ASCII-digit string. Unlike strconv it rejects signs.
func digits(s string) (uint32, bool) {
	var n uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint32(c-'0')
	}
	return n, true
}
