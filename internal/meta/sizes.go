package meta

import "path/filepath"

// Sizes is the meta/sizes descriptor, `{shape, nbytes, cbytes}`,
// rewritten on every explicit Flush.
type Sizes struct {
	Shape  []int `json:"shape"`
	NBytes int64 `json:"nbytes"`
	CBytes int64 `json:"cbytes"`
}

// WriteSizes writes the sizes descriptor to <root>/meta/sizes.
func WriteSizes(root string, s Sizes) error {
	return writeJSONAtomic(filepath.Join(metaDir(root), "sizes"), s)
}

// ReadSizes reads the sizes descriptor from <root>/meta/sizes.
func ReadSizes(root string) (Sizes, error) {
	var s Sizes
	err := readJSON(filepath.Join(metaDir(root), "sizes"), &s)
	return s, err
}
