// Package archive provides optional compression codecs for complete, already
// ISF-encoded byte streams.
//
// This sits outside the codec core (spec components C1-C10): it never changes
// what isf.Decode consumes or isf.Encode produces, only what travels across a
// storage or transport boundary that owns both ends. A one-byte algorithm tag
// (see Tag) precedes the compressed body so DecodeCompressed is self-describing.
//
// # Supported algorithms
//
//   - None: no compression, useful as a baseline or when the payload is
//     already dense (coordinate runs compressed by Gorilla/Huffman rarely
//     compress further)
//   - Zstd: best ratio, moderate speed; good for cold storage of drawings
//   - S2: balanced ratio/speed; good for hot-path persistence
//   - LZ4: fastest decompression; good for read-heavy caches
//
// All codecs implement Compressor, Decompressor, and the combined Codec
// interface, and are safe for concurrent use.
package archive
