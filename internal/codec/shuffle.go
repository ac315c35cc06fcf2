package codec

// shuffleBytes and unshuffleBytes implement the byte-wise transpose filter: given a
// buffer holding n consecutive atoms of itemSize bytes each, byte i of every
// atom is grouped together. This tends to put similar high-order bytes of
// numeric data next to each other, which most entropy coders compress
// better than the interleaved original.
//
// None of the compression backends expose a pre-filter stage, so the
// transform is applied here, before the block is handed to the codec, and
// undone after decompression.
func shuffleBytes(dst, src []byte, itemSize int) {
	n := len(src) / itemSize
	if itemSize <= 1 || n == 0 {
		copy(dst, src)
		return
	}
	for i := 0; i < itemSize; i++ {
		for j := 0; j < n; j++ {
			dst[i*n+j] = src[j*itemSize+i]
		}
	}
	// Any trailing partial atom (shouldn't happen for block-aligned input,
	// but block sizes are clamped to chunk remainders) is copied verbatim.
	rem := len(src) - n*itemSize
	if rem > 0 {
		copy(dst[n*itemSize:], src[n*itemSize:])
	}
}

func unshuffleBytes(dst, src []byte, itemSize int) {
	n := len(src) / itemSize
	if itemSize <= 1 || n == 0 {
		copy(dst, src)
		return
	}
	for i := 0; i < itemSize; i++ {
		for j := 0; j < n; j++ {
			dst[j*itemSize+i] = src[i*n+j]
		}
	}
	rem := len(src) - n*itemSize
	if rem > 0 {
		copy(dst[n*itemSize:], src[n*itemSize:])
	}
}

// shuffleBits is the bit-level variant: bit k of every byte across the
// buffer is grouped into its own plane. Only the 8-byte-aligned prefix is
// transposed (8 planes of n/8 bytes each fill exactly n bytes); any
// remainder is carried verbatim so dst stays the same length as src.
func shuffleBits(dst, src []byte) {
	n := len(src) &^ 7
	if n > 0 {
		planeBytes := n / 8
		for i := range dst[:n] {
			dst[i] = 0
		}
		for bit := 0; bit < 8; bit++ {
			planeOff := bit * planeBytes
			for byteIdx := 0; byteIdx < n; byteIdx++ {
				if src[byteIdx]&(1<<uint(bit)) != 0 {
					dst[planeOff+byteIdx/8] |= 1 << uint(byteIdx%8)
				}
			}
		}
	}
	copy(dst[n:], src[n:])
}

func unshuffleBits(dst, src []byte) {
	n := len(src) &^ 7
	if n > 0 {
		planeBytes := n / 8
		for i := range dst[:n] {
			dst[i] = 0
		}
		for bit := 0; bit < 8; bit++ {
			planeOff := bit * planeBytes
			for byteIdx := 0; byteIdx < n; byteIdx++ {
				if src[planeOff+byteIdx/8]&(1<<uint(byteIdx%8)) != 0 {
					dst[byteIdx] |= 1 << uint(bit)
				}
			}
		}
	}
	copy(dst[n:], src[n:])
}

func applyShuffle(mode ShuffleMode, itemSize int, src []byte) []byte {
	switch mode {
	case ShuffleByte:
		out := make([]byte, len(src))
		shuffleBytes(out, src, itemSize)
		return out
	case ShuffleBit:
		out := make([]byte, len(src))
		shuffleBits(out, src)
		return out
	default:
		return src
	}
}

func undoShuffle(mode ShuffleMode, itemSize int, src []byte) []byte {
	switch mode {
	case ShuffleByte:
		out := make([]byte, len(src))
		unshuffleBytes(out, src, itemSize)
		return out
	case ShuffleBit:
		out := make([]byte, len(src))
		unshuffleBits(out, src)
		return out
	default:
		return src
	}
}
