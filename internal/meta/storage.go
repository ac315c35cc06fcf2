// Package meta implements the persistent metadata layer: the storage and
// sizes descriptors under <root>/meta/, plus the attrs bag under
// <root>/attrs/, each a small JSON sidecar file written with a
// temp-file-then-rename for crash safety.
package meta

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fenilsonani/carray/internal/cerrors"
)

// CParams mirrors the compression parameters persisted in meta/storage's
// "cparams" object.
type CParams struct {
	CLevel   int    `json:"clevel"`
	Shuffle  int    `json:"shuffle"`
	CName    string `json:"cname"`
	Quantize *int   `json:"quantize"`
}

// Storage is the meta/storage descriptor: everything needed to reopen a
// persisted CArray without scanning its data files.
type Storage struct {
	Dtype       string          `json:"dtype"`
	CParams     CParams         `json:"cparams"`
	ChunkLen    int             `json:"chunklen"`
	ExpectedLen int             `json:"expectedlen"`
	Dflt        json.RawMessage `json:"dflt"`
}

func metaDir(root string) string {
	return filepath.Join(root, "meta")
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".meta-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cerrors.ErrIO
	}
	if err := json.Unmarshal(data, v); err != nil {
		return cerrors.ErrCorruptBuffer
	}
	return nil
}

// WriteStorage writes the storage descriptor to <root>/meta/storage.
func WriteStorage(root string, s Storage) error {
	return writeJSONAtomic(filepath.Join(metaDir(root), "storage"), s)
}

// ReadStorage reads the storage descriptor from <root>/meta/storage.
func ReadStorage(root string) (Storage, error) {
	var s Storage
	err := readJSON(filepath.Join(metaDir(root), "storage"), &s)
	return s, err
}
