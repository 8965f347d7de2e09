// Package isf implements the Ink Serialized Format: a compact binary
// encoding for pen/stylus strokes, their drawing attributes, and the
// transforms and device metrics that reposition and calibrate them.
//
// # Core Features
//
//   - Tag-driven binary stream: every stroke, attribute set, metrics
//     table, and transform is a self-describing, length-prefixed tag
//   - Multi-byte (varint) integer coding with a zigzag signed variant
//   - Delta-delta (second-difference) point transform ahead of bit-level packing
//   - Fixed-width signed bit packing ("Gorilla") and adaptive Huffman coding
//     for stroke point data
//   - Optional Zstd/S2/LZ4 whole-stream compression
//   - "Fortified" GIF/PNG containers that carry a stream inside an
//     otherwise-ordinary displayable image
//
// # Basic Usage
//
// Decoding a stream:
//
//	import "github.com/inkstream/isf"
//
//	drawing := isf.Decode(data)
//	if drawing.Err != nil {
//	    log.Fatal(drawing.Err)
//	}
//	fmt.Println(len(drawing.Strokes), "strokes")
//
// Encoding a Drawing built programmatically:
//
//	d := model.NewDrawing()
//	d.Canvas = model.Rect{Right: 1000, Bottom: 1000}
//	set := model.DefaultAttributeSet()
//	set.Size = model.Size{Width: 80, Height: 80}
//	attrs := d.InternAttributeSet(set)
//	st := model.NewStroke()
//	st.AttrsID = attrs
//	st.Points = []model.Point{{X: 0, Y: 0}}
//	d.AddStroke(st)
//	data, err := isf.Encode(d)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the tags,
// container, and archive packages. For fine-grained control over a
// single concern (the tag grammar, a fortified container format, a
// specific compression codec), use those packages directly.
package isf

import (
	"fmt"

	"github.com/inkstream/isf/archive"
	"github.com/inkstream/isf/container"
	"github.com/inkstream/isf/errs"
	"github.com/inkstream/isf/model"
	"github.com/inkstream/isf/tags"
)

// Decode parses a raw ISF byte stream into a Drawing.
//
// Decode never panics and never returns nil: a malformed or truncated
// stream yields a Drawing whose Err field is set and whose fields
// reflect everything successfully parsed before the failure.
func Decode(data []byte) *model.Drawing {
	return tags.Decode(data)
}

// Encode serialises a Drawing into a raw ISF byte stream.
func Encode(d *model.Drawing) ([]byte, error) {
	return tags.Encode(d)
}

// EncodePNG encodes d and wraps the resulting stream in a minimal,
// displayable PNG image (spec.md §6).
func EncodePNG(d *model.Drawing) ([]byte, error) {
	data, err := tags.Encode(d)
	if err != nil {
		return nil, err
	}

	return container.EncodePNG(data)
}

// DecodePNG extracts an ISF stream from a fortified PNG and parses it.
func DecodePNG(data []byte) (*model.Drawing, error) {
	raw, err := container.DecodePNG(data)
	if err != nil {
		return nil, err
	}

	return tags.Decode(raw), nil
}

// EncodeGIF encodes d and wraps the resulting stream in a minimal,
// displayable GIF image (spec.md §6).
func EncodeGIF(d *model.Drawing) ([]byte, error) {
	data, err := tags.Encode(d)
	if err != nil {
		return nil, err
	}

	return container.EncodeGIF(data)
}

// DecodeGIF extracts an ISF stream from a fortified GIF and parses it.
func DecodeGIF(data []byte) (*model.Drawing, error) {
	raw, err := container.DecodeGIF(data)
	if err != nil {
		return nil, err
	}

	return tags.Decode(raw), nil
}

// EncodeCompressed encodes d, compresses the result with codec, and
// returns the compressed body prefixed with a single tag byte
// identifying the codec so DecodeCompressed can select it back without
// being told out of band.
func EncodeCompressed(d *model.Drawing, codec archive.Codec) ([]byte, error) {
	data, err := tags.Encode(d)
	if err != nil {
		return nil, err
	}

	tag, err := archive.TagFor(codec)
	if err != nil {
		return nil, err
	}

	compressed, err := codec.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("isf: compress stream: %w", err)
	}

	out := make([]byte, 0, len(compressed)+1)
	out = append(out, byte(tag))
	out = append(out, compressed...)

	return out, nil
}

// DecodeCompressed reverses EncodeCompressed: it reads the leading codec
// tag, decompresses the remaining bytes with the matching built-in
// Codec, and parses the result.
func DecodeCompressed(data []byte) (*model.Drawing, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("isf: %w: compressed stream missing codec tag", errs.ErrInvalidStream)
	}

	codec, err := archive.CodecFor(archive.Tag(data[0]))
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(data[1:])
	if err != nil {
		return nil, fmt.Errorf("isf: decompress stream: %w", err)
	}

	return tags.Decode(raw), nil
}
