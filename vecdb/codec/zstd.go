package codec

import "github.com/klauspost/compress/zstd"

// Shared encoder/decoder: both are documented safe for concurrent use, and
// zstd encoder/decoder construction allocates internal state tables that
// would dominate the cost of compressing a single page if built per call.
// SpeedFastest favors the compressed-vector write path (every page fill
// compresses once) over the read path (pages decompress lazily, possibly
// repeatedly on a cold cache).
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Zstd compresses pages favoring ratio over speed among the three
// strategies, at the cost of the shared encoder/decoder's fixed overhead.
type Zstd struct{}

func (Zstd) Compress(values []uint64) []byte {
	raw := encodeLanes(values)
	return zstdEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))
}

func (z Zstd) Decompress(data []byte, expectedLen int) ([]uint64, error) {
	return z.DecompressInto(data, expectedLen, nil)
}

func (Zstd) DecompressInto(data []byte, expectedLen int, buf []uint64) ([]uint64, error) {
	raw, err := zstdDecoder.DecodeAll(data, make([]byte, 0, expectedLen*8))
	if err != nil {
		return nil, ErrLengthMismatch
	}
	return decodeLanesInto(raw, expectedLen, buf)
}
