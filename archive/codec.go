package archive

import "fmt"

// Compressor compresses a complete, already-encoded ISF byte stream.
//
// The input is the output of isf.Encode (or isf.EncodeGIF/EncodePNG) — a
// finished tag stream, not an individual field or sub-record. Implementations
// never need to understand ISF's tag grammar; they operate on opaque bytes.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// The returned slice is owned by the caller: newly allocated, except
	// that NoOpCompressor returns data itself. The input slice is not
	// modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Example:
//
//	codec := archive.NewZstdCompressor()
//	raw, err := codec.Decompress(stored)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
type Decompressor interface {
	// Decompress decompresses data and returns the original bytes.
	//
	// Returns an error if data is corrupt or was compressed with a
	// different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}

// Tag identifies the compression algorithm a byte stream was encoded with.
// It is written as a single leading byte ahead of the compressed body so a
// reader can select the matching Codec without being told out of band.
type Tag byte

const (
	// TagNone, the zero value, marks an uncompressed body: the bytes
	// following the tag are the original ISF stream unchanged.
	TagNone Tag = iota
	// TagZstd marks a Zstandard-compressed body.
	TagZstd
	// TagS2 marks an S2-compressed body.
	TagS2
	// TagLZ4 marks an LZ4-compressed body.
	TagLZ4
)

// String returns the tag's name, for diagnostics.
func (t Tag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagZstd:
		return "zstd"
	case TagS2:
		return "s2"
	case TagLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("archive.Tag(%d)", byte(t))
	}
}

// CodecFor returns the built-in Codec registered for tag.
func CodecFor(tag Tag) (Codec, error) {
	codec, ok := builtinCodecs[tag]
	if !ok {
		return nil, fmt.Errorf("archive: unsupported codec tag: %s", tag)
	}

	return codec, nil
}

// TagFor returns the Tag a caller should write for codec, by identifying its
// concrete type. Used by EncodeCompressed so callers only need to pass a
// Codec value, not also name its tag.
func TagFor(codec Codec) (Tag, error) {
	switch codec.(type) {
	case NoOpCompressor:
		return TagNone, nil
	case ZstdCompressor:
		return TagZstd, nil
	case S2Compressor:
		return TagS2, nil
	case LZ4Compressor:
		return TagLZ4, nil
	default:
		return 0, fmt.Errorf("archive: %T is not a built-in codec", codec)
	}
}

var builtinCodecs = map[Tag]Codec{
	TagNone: NewNoOpCompressor(),
	TagZstd: NewZstdCompressor(),
	TagS2:   NewS2Compressor(),
	TagLZ4:  NewLZ4Compressor(),
}

// Stats describes the result of a single compression operation, useful for
// logging or choosing among codecs when persisting many drawings.
type Stats struct {
	Tag             Tag
	OriginalSize    int64
	CompressedSize  int64
	CompressionTime int64 // nanoseconds
}

// Ratio returns CompressedSize / OriginalSize; values below 1.0 indicate the
// body shrank.
func (s Stats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}
