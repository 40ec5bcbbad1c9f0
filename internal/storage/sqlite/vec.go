package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// encodeEmbedding encodes a float32 vector as the little-endian blob layout
// sqlite-vec expects.
func encodeEmbedding(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		// Cannot happen with bytes.Buffer
		return nil
	}
	return buf.Bytes()
}

// decodeEmbedding reads a sqlite-vec blob back into a float32 vector.
func decodeEmbedding(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec); err != nil {
		return nil, fmt.Errorf("failed to decode embedding blob: %w", err)
	}
	return vec, nil
}
