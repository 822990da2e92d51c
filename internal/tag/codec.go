package tag

import (
	"encoding/json"
	"fmt"
)

// wireType is the JSON shape of a TagType: exactly one field is set.
//
//	{"date":[22,4,2020]}  {"number":-5}  {"text":"ghg"}
type wireType struct {
	Date   *[3]uint32 `json:"date,omitempty"`
	Number *int32     `json:"number,omitempty"`
	Text   *string    `json:"text,omitempty"`
}

func (t TagType) MarshalJSON() ([]byte, error) {
	var w wireType
	switch t.kind {
	case KindDate:
		w.Date = &[3]uint32{uint32(t.day), uint32(t.month), t.year}
	case KindNumber:
		n := t.num
		w.Number = &n
	case KindText:
		s := t.text
		w.Text = &s
	default:
		return nil, fmt.Errorf("unknown tag type kind %d", t.kind)
	}
	return json.Marshal(w)
}

func (t *TagType) UnmarshalJSON(data []byte) error {
	var w wireType
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decoding tag type: %w", err)
	}
	set := 0
	for _, present := range []bool{w.Date != nil, w.Number != nil, w.Text != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("tag type must set exactly one of date, number, text: %s", data)
	}
	switch {
	case w.Date != nil:
		d := *w.Date
		if d[0] > 0xff || d[1] > 0xff {
			return fmt.Errorf("date %v out of range", d)
		}
		*t = Date(uint8(d[0]), uint8(d[1]), d[2])
	case w.Number != nil:
		*t = Number(*w.Number)
	default:
		*t = Text(*w.Text)
	}
	return nil
}

// MarshalJSON encodes a tag as an array of values in cons order. Nil is [].
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Items())
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	var items []TagType
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding tag: %w", err)
	}
	*t = Of(items...)
	return nil
}
