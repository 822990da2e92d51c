package tag

import (
	"cmp"
	"fmt"
	"strconv"
)

// Kind identifies which variant a TagType holds.
// The declaration order is the ordering used by Compare.
type Kind uint8

const (
	KindDate Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// TagType is an atomic tag value: a calendar date, a signed integer or a
// text token. TagType values are comparable with ==.
//
// Dates are not validated; day=32 is a valid TagType.
type TagType struct {
	kind  Kind
	day   uint8
	month uint8
	year  uint32
	num   int32
	text  string
}

// Date returns a date TagType.
func Date(day, month uint8, year uint32) TagType {
	return TagType{kind: KindDate, day: day, month: month, year: year}
}

// Number returns a number TagType.
func Number(n int32) TagType {
	return TagType{kind: KindNumber, num: n}
}

// Text returns a text TagType. s must not contain the delimiter to survive
// a round trip through the text syntax.
func Text(s string) TagType {
	return TagType{kind: KindText, text: s}
}

func (t TagType) Kind() Kind { return t.kind }

// DateParts returns the day, month and year of a date TagType.
// ok is false for any other kind.
func (t TagType) DateParts() (day, month uint8, year uint32, ok bool) {
	if t.kind != KindDate {
		return 0, 0, 0, false
	}
	return t.day, t.month, t.year, true
}

// NumberValue returns the integer of a number TagType.
func (t TagType) NumberValue() (int32, bool) {
	if t.kind != KindNumber {
		return 0, false
	}
	return t.num, true
}

// TextValue returns the string of a text TagType.
func (t TagType) TextValue() (string, bool) {
	if t.kind != KindText {
		return "", false
	}
	return t.text, true
}

// CompareTypes orders TagTypes by kind first and then by payload. Dates
// compare field by field as (day, month, year), which is not calendar order.
func CompareTypes(a, b TagType) int {
	if c := cmp.Compare(a.kind, b.kind); c != 0 {
		return c
	}
	switch a.kind {
	case KindDate:
		if c := cmp.Compare(a.day, b.day); c != 0 {
			return c
		}
		if c := cmp.Compare(a.month, b.month); c != 0 {
			return c
		}
		return cmp.Compare(a.year, b.year)
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	default:
		return cmp.Compare(a.text, b.text)
	}
}

// String renders the token as it appears in the tag text syntax.
func (t TagType) String() string {
	switch t.kind {
	case KindDate:
		return fmt.Sprintf("%02d-%02d-%04d", t.day, t.month, t.year)
	case KindNumber:
		return strconv.FormatInt(int64(t.num), 10)
	default:
		return t.text
	}
}
