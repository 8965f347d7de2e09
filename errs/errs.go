// Package errs defines the sentinel errors returned by every package in this
// module. Call sites wrap a sentinel with context using fmt.Errorf("%w: ...",
// ...); callers recover the kind with errors.Is instead of string matching.
package errs

import "errors"

var (
	// ErrBadVersion is returned when a stream's version tag names an
	// unsupported ISF version.
	ErrBadVersion = errors.New("isf: unsupported stream version")

	// ErrBadStreamSize is returned when the declared stream size tag does
	// not match the number of bytes actually consumed.
	ErrBadStreamSize = errors.New("isf: declared stream size does not match body")

	// ErrInvalidStream is returned when a tag allowed only once
	// (INK_SPACE_RECT, HIMETRIC_SIZE, GUID_TABLE) repeats, when a custom tag
	// names an unregistered GUID, or when a GIF/PNG container or compressed
	// wrapper lacks its ISF payload or codec tag.
	ErrInvalidStream = errors.New("isf: duplicate or unregistered tag")

	// ErrInvalidPayload is returned when a tag's payload cannot be parsed
	// according to its own grammar (bad multi-byte integer, truncated
	// sub-record, out-of-range enum value).
	ErrInvalidPayload = errors.New("isf: malformed tag payload")

	// ErrInvalidBlock is returned when a structured sub-record inside a
	// tag payload (an attribute property, a metrics entry) is malformed.
	ErrInvalidBlock = errors.New("isf: malformed sub-record")

	// ErrInternal is returned when the codec observes a state its own
	// invariants should have made impossible. Seeing this means a bug in
	// this module, not bad input.
	ErrInternal = errors.New("isf: internal codec invariant violated")

	// ErrUnsupported is returned for wire features this module does not
	// implement (the Huffman 64-bit extension, TRANSFORM_QUAD, packet
	// algorithm families other than Gorilla and Huffman) and for values the
	// encoder cannot represent (no Huffman table fits, or a Gorilla block is
	// wider than the packet header allows).
	ErrUnsupported = errors.New("isf: unimplemented wire feature")

	// ErrEndOfStream is returned when a read runs past the end of the bit
	// stream.
	ErrEndOfStream = errors.New("isf: unexpected end of bit stream")

	// ErrHashCollision names a hash collision between two distinct values
	// in an internal/dedup registry. No function in this module returns it;
	// dedup.Registry reports collisions through its HasCollision method.
	ErrHashCollision = errors.New("isf: hash collision in dedup registry")
)
