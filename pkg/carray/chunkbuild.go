package carray

import "github.com/fenilsonani/carray/internal/chunk"

// buildChunkFromArray wraps chunk.FromArray with this array's element
// type, chunk length, and compression params, and the in-memory-mode flag
// (constant detection only applies to in-memory arrays).
func buildChunkFromArray(data []byte, a *CArray) (*chunk.Chunk, error) {
	return chunk.FromArray(data, a.elemType, a.chunkLen, a.params, a.root == "")
}
