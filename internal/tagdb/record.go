package tagdb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"tagdb/internal/tag"
)

// fileRecord is the persisted shape of a TaggedFile.
type fileRecord struct {
	Path string    `json:"path"`
	Tags []tag.Tag `json:"tags"`
}

// databaseRecord is the persisted shape of a Database:
//
//	{"location":"tags.json","files":[{"path":"a.txt","tags":[[{"text":"x"}]]}]}
//
// Files are written in path order and tags in tag order so that saving the
// same database twice produces identical bytes.
type databaseRecord struct {
	Location string       `json:"location"`
	Files    []fileRecord `json:"files"`
}

// Decoding goes through pointer fields so that absent and null members can
// be told apart from empty ones.
type fileInput struct {
	Path *string    `json:"path"`
	Tags *[]tag.Tag `json:"tags"`
}

type databaseInput struct {
	Location *string      `json:"location"`
	Files    *[]fileInput `json:"files"`
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after record")
	}
	return nil
}

func (in *fileInput) taggedFile() (*TaggedFile, error) {
	if in == nil {
		return nil, errors.New("file record is null")
	}
	if in.Path == nil || *in.Path == "" {
		return nil, errors.New("file record has no path")
	}
	if in.Tags == nil {
		return nil, fmt.Errorf("file record %s has no tags", *in.Path)
	}
	return NewTaggedFile(*in.Path, *in.Tags...), nil
}

func (f *TaggedFile) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileRecord{Path: f.path, Tags: f.Tags()})
}

func (f *TaggedFile) UnmarshalJSON(data []byte) error {
	var in *fileInput
	if err := decodeStrict(data, &in); err != nil {
		return fmt.Errorf("decoding tagged file: %w", err)
	}
	decoded, err := in.taggedFile()
	if err != nil {
		return fmt.Errorf("decoding tagged file: %w", err)
	}
	*f = *decoded
	return nil
}

func (db *Database) MarshalJSON() ([]byte, error) {
	rec := databaseRecord{Location: db.location, Files: []fileRecord{}}
	for _, f := range db.Files() {
		rec.Files = append(rec.Files, fileRecord{Path: f.path, Tags: f.Tags()})
	}
	return json.Marshal(rec)
}

// UnmarshalJSON rejects records that could not have been written by
// MarshalJSON: a null or partial record, an empty location, unknown members,
// or file entries without a path or tag list.
func (db *Database) UnmarshalJSON(data []byte) error {
	var in *databaseInput
	if err := decodeStrict(data, &in); err != nil {
		return fmt.Errorf("decoding database: %w", err)
	}
	switch {
	case in == nil:
		return errors.New("decoding database: record is null")
	case in.Location == nil || *in.Location == "":
		return errors.New("decoding database: record has no location")
	case in.Files == nil:
		return errors.New("decoding database: record has no file list")
	}

	files := make([]*TaggedFile, 0, len(*in.Files))
	for i := range *in.Files {
		f, err := (*in.Files)[i].taggedFile()
		if err != nil {
			return fmt.Errorf("decoding database: %w", err)
		}
		files = append(files, f)
	}
	*db = *Restore(*in.Location, files)
	return nil
}
