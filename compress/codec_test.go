package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func payload() []byte {
	// Delta-encoded integers tend to repeat small values, so exercise the
	// codecs against data with that shape rather than pure random bytes.
	out := make([]byte, 0, 4096)
	for i := 0; i < 512; i++ {
		out = append(out, byte(i%7), byte(i%3), 0, 0)
	}

	return out
}

func TestGetCodec_AllAlgorithmsRoundTrip(t *testing.T) {
	algorithms := []Algorithm{AlgorithmNone, AlgorithmZstd, AlgorithmS2, AlgorithmLZ4}
	data := payload()

	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			codec, err := GetCodec(alg)
			require.NoError(t, err)

			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.True(t, bytes.Equal(data, decompressed))
		})
	}
}

func TestGetCodec_UnsupportedAlgorithm(t *testing.T) {
	_, err := GetCodec(Algorithm(255))
	require.Error(t, err)
}

func TestStats_Ratio(t *testing.T) {
	s := Stats{OriginalSize: 1000, CompressedSize: 250}
	require.InDelta(t, 0.25, s.Ratio(), 1e-9)
}

func TestStats_Ratio_ZeroOriginalSize(t *testing.T) {
	s := Stats{OriginalSize: 0, CompressedSize: 0}
	require.Equal(t, 0.0, s.Ratio())
}

func TestAlgorithm_String(t *testing.T) {
	require.Equal(t, "None", AlgorithmNone.String())
	require.Equal(t, "Zstd", AlgorithmZstd.String())
	require.Equal(t, "S2", AlgorithmS2.String())
	require.Equal(t, "LZ4", AlgorithmLZ4.String())
	require.Equal(t, "Unknown", Algorithm(0).String())
}

func TestNoOpCompressor_IsIdentity(t *testing.T) {
	c := NewNoOpCompressor()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, compressed))

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, decompressed))
}
