package task

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
)

// ReadJSON decodes a task from r.
//
// A missing "items" array decodes as an empty task. Malformed JSON is
// reported as INVALID_FORMAT. ReadJSON does not validate geometry; that
// happens when the task is loaded into a session.
func ReadJSON(r io.Reader) (*Task, error) {
	var t Task
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode task")
	}
	if t.Items == nil {
		t.Items = []Item{}
	}
	return &t, nil
}

// ImportJSON reads a task from the JSON file at path.
func ImportJSON(path string) (*Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes t as indented JSON to w.
func WriteJSON(t *Task, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes t to a JSON file at path.
func ExportJSON(t *Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
