package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"api-graph/internal/types"
)

// WriteDataset serializes the records to the given path. The file is written
// to a temporary name in the same directory and renamed into place, so a
// viewer reading the old file never observes a partial write.
func WriteDataset(path string, records []types.EndpointRecord) error {
	if records == nil {
		records = []types.EndpointRecord{}
	}
	return WriteJSON(path, records)
}

// LoadDataset reads a dataset file back into endpoint records
func LoadDataset(path string) ([]types.EndpointRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %v", err)
	}
	var records []types.EndpointRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %v", err)
	}
	return records, nil
}

// WriteJSON writes an indented JSON artifact atomically
func WriteJSON(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %v", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %v", err)
	}
	// CreateTemp makes the file 0600 and rename keeps the mode; the static
	// file server reads these artifacts as another user.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to set file mode: %v", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %v", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %v", path, err)
	}
	return nil
}
