package ledger

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

// EncodeAll and DecodeAll are safe for concurrent use
var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// encodePairs packs n, v1 and v2 as little-endian values and compresses them
func encodePairs(v1, v2 []float64) ([]byte, error) {
	if len(v1) != len(v2) {
		return nil, fmt.Errorf("paired sequences differ in length: %d vs %d", len(v1), len(v2))
	}

	n := len(v1)
	buf := make([]byte, 4+16*n)
	binary.LittleEndian.PutUint32(buf, uint32(n))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(v1[i]))
		binary.LittleEndian.PutUint64(buf[4+8*(n+i):], math.Float64bits(v2[i]))
	}
	return encoder.EncodeAll(buf, nil), nil
}

func decodePairs(blob []byte) ([]float64, []float64, error) {
	buf, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress pairs: %w", err)
	}
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("pairs blob too short: %d bytes", len(buf))
	}

	n := int(binary.LittleEndian.Uint32(buf))
	if len(buf) != 4+16*n {
		return nil, nil, fmt.Errorf("pairs blob holds %d bytes, want %d", len(buf), 4+16*n)
	}

	v1 := make([]float64, n)
	v2 := make([]float64, n)
	for i := 0; i < n; i++ {
		v1[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[4+8*i:]))
		v2[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[4+8*(n+i):]))
	}
	return v1, v2, nil
}
