package codec

// ForTag returns the Strategy for a compressed-vector format tag. Callers
// pass the same byte values vecdb.Format uses for FormatPco/FormatLZ4/
// FormatZstd; this package does not import vecdb to avoid a cycle.
func ForTag(tag uint8) (Strategy, bool) {
	switch tag {
	case 64:
		return Pco{}, true
	case 65:
		return LZ4{}, true
	case 66:
		return Zstd{}, true
	default:
		return nil, false
	}
}
