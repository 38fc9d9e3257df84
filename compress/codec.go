package compress

import "fmt"

// Algorithm identifies a supported opaque-payload compression algorithm.
type Algorithm uint8

const (
	// AlgorithmNone performs no compression.
	AlgorithmNone Algorithm = iota + 1
	// AlgorithmZstd uses Zstandard: best ratio, moderate speed.
	AlgorithmZstd
	// AlgorithmS2 uses S2, a Snappy derivative: balanced ratio and speed.
	AlgorithmS2
	// AlgorithmLZ4 uses LZ4: fastest decompression.
	AlgorithmLZ4
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "None"
	case AlgorithmZstd:
		return "Zstd"
	case AlgorithmS2:
		return "S2"
	case AlgorithmLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Compressor compresses an opaque byte payload.
//
// Memory management: the input slice is never modified. The returned slice is
// newly allocated and owned by the caller, except for NoOpCompressor, which
// returns the input slice itself.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a payload produced by a matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}

// Stats describes a single compress/decompress operation, useful for
// monitoring the cost/benefit of compressing opaque sensor-stream bytes
// before they cross the envelope boundary.
type Stats struct {
	Algorithm      Algorithm
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns CompressedSize / OriginalSize. Values below 1.0 indicate
// successful compression.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

var builtinCodecs = map[Algorithm]Codec{
	AlgorithmNone: NewNoOpCompressor(),
	AlgorithmZstd: NewZstdCompressor(),
	AlgorithmS2:   NewS2Compressor(),
	AlgorithmLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for the given algorithm.
func GetCodec(algorithm Algorithm) (Codec, error) {
	if codec, ok := builtinCodecs[algorithm]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("compress: unsupported algorithm: %s", algorithm)
}
