package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/datamapper/pkg/errors"
)

// ReadSnapshot decodes a JSON snapshot from r and validates it.
//
// The input must be a JSON object with "inputs", "output" and "mappings":
//
//	{
//	  "inputs": [{"id": "input", "kind": "record", "fields": [...]}],
//	  "output": {"id": "Out", "kind": "record", "fields": [...]},
//	  "mappings": [{"output": "name", "inputs": ["input.fullName"], "expression": "input.fullName"}]
//	}
//
// A structurally invalid snapshot yields an INVALID_SNAPSHOT error; malformed
// JSON yields INVALID_FORMAT. ReadSnapshot does not close r.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ReadSnapshotFile reads the JSON snapshot at path.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadSnapshot(f)
}

// WriteSnapshot encodes s as indented JSON. The output can be re-read with
// [ReadSnapshot].
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "snapshot is nil")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteSnapshotFile writes s to a JSON file at path.
func WriteSnapshotFile(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSnapshot(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
