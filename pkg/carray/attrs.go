package carray

import "github.com/fenilsonani/carray/internal/meta"

// SetAttr stores a JSON-serializable value under key in the array's
// attribute bag. Persistent arrays write the bag to disk immediately.
func (a *CArray) SetAttr(key string, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.attrs == nil {
		a.attrs = meta.Attrs{}
	}
	a.attrs[key] = value
	if a.root == "" {
		return nil
	}
	return meta.WriteAttrs(a.root, a.attrs)
}

// Attr returns the value stored under key, and whether it was present.
func (a *CArray) Attr(key string) (any, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.attrs[key]
	return v, ok
}

// DeleteAttr removes key from the attribute bag.
func (a *CArray) DeleteAttr(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.attrs, key)
	if a.root == "" {
		return nil
	}
	return meta.WriteAttrs(a.root, a.attrs)
}

// GetStringAttr returns the string stored under key, and whether a
// string was present there.
func (a *CArray) GetStringAttr(key string) (string, bool) {
	v, ok := a.Attr(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetIntAttr returns the integer stored under key. JSON numbers read
// back from disk arrive as float64, so both forms are accepted.
func (a *CArray) GetIntAttr(key string) (int64, bool) {
	v, ok := a.Attr(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

// GetFloatAttr returns the float stored under key.
func (a *CArray) GetFloatAttr(key string) (float64, bool) {
	v, ok := a.Attr(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Attrs returns a snapshot copy of the attribute bag.
func (a *CArray) Attrs() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]any, len(a.attrs))
	for k, v := range a.attrs {
		out[k] = v
	}
	return out
}

// Description is a human-readable summary of an array's layout.
type Description struct {
	Dtype       string `json:"dtype"`
	ChunkLen    int    `json:"chunklen"`
	Len         int    `json:"len"`
	NChunks     int    `json:"nchunks"`
	LeftoverLen int    `json:"leftover_len"`
	Root        string `json:"root,omitempty"`
	CodecName   string `json:"codec_name"`
	Level       int    `json:"level"`
}

// Describe summarizes the array's current layout.
func (a *CArray) Describe() (Description, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := a.lenLocked()
	if err != nil {
		return Description{}, err
	}
	nchunks, err := a.nchunks()
	if err != nil {
		return Description{}, err
	}
	return Description{
		Dtype:       a.elemType.String(),
		ChunkLen:    a.chunkLen,
		Len:         n,
		NChunks:     nchunks,
		LeftoverLen: a.leftoverRows,
		Root:        a.root,
		CodecName:   a.params.CodecName,
		Level:       a.params.Level,
	}, nil
}
