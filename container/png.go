package container

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"

	"github.com/inkstream/isf/errs"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// pngChunkType is a private, ancillary (lowercase first letter) chunk type:
// decoders that don't recognise it are required by the PNG spec to skip it.
const pngChunkType = "isFd"

// EncodePNG wraps an encoded ISF stream (the output of isf.Encode) inside a
// minimal 1x1 PNG image, carrying isfBytes in a private "isFd" chunk placed
// right after IHDR.
func EncodePNG(isfBytes []byte) ([]byte, error) {
	base := new(bytes.Buffer)
	img := image.NewGray(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.Gray{Y: 0})
	if err := png.Encode(base, img); err != nil {
		return nil, fmt.Errorf("container: encode base png: %w", err)
	}

	data := base.Bytes()
	if len(data) < len(pngSignature)+8 {
		return nil, fmt.Errorf("container: %w: base png too short", errs.ErrInternal)
	}

	ihdrEnd := len(pngSignature) + pngChunkSize(data, len(pngSignature))
	if ihdrEnd > len(data) {
		return nil, fmt.Errorf("container: %w: malformed base png", errs.ErrInternal)
	}

	chunk := encodePNGChunk(pngChunkType, isfBytes)

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunk...)
	out = append(out, data[ihdrEnd:]...)

	return out, nil
}

// DecodePNG locates the "isFd" chunk in a fortified PNG and returns its raw
// bytes, ready to hand to tags.Decode.
func DecodePNG(data []byte) ([]byte, error) {
	if len(data) < len(pngSignature) || !bytes.Equal(data[:len(pngSignature)], pngSignature) {
		return nil, fmt.Errorf("container: %w: not a PNG file", errs.ErrInvalidStream)
	}

	offset := len(pngSignature)
	for offset+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[offset : offset+4]))
		typ := string(data[offset+4 : offset+8])
		dataStart := offset + 8
		dataEnd := dataStart + length
		if dataEnd+4 > len(data) {
			break
		}
		if typ == pngChunkType {
			payload := make([]byte, length)
			copy(payload, data[dataStart:dataEnd])

			return payload, nil
		}
		offset = dataEnd + 4
	}

	return nil, fmt.Errorf("container: %w: no ISF chunk found in PNG", errs.ErrInvalidStream)
}

// pngChunkSize returns the total byte length (length + type + data + crc)
// of the chunk starting at offset.
func pngChunkSize(data []byte, offset int) int {
	length := binary.BigEndian.Uint32(data[offset : offset+4])

	return 4 + 4 + int(length) + 4 //nolint:gosec // length comes from a PNG we just encoded ourselves
}

func encodePNGChunk(typ string, payload []byte) []byte {
	out := make([]byte, 0, 12+len(payload))

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(payload))) //nolint:gosec // ISF streams fit comfortably in 32 bits
	out = append(out, length...)

	typeAndData := make([]byte, 0, len(typ)+len(payload))
	typeAndData = append(typeAndData, typ...)
	typeAndData = append(typeAndData, payload...)
	out = append(out, typeAndData...)

	crc := make([]byte, 4)
	binary.BigEndian.PutUint32(crc, crc32.ChecksumIEEE(typeAndData))
	out = append(out, crc...)

	return out
}
