package container

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"

	"github.com/inkstream/isf/errs"
)

const (
	gifTrailer          = 0x3B
	gifExtIntroducer    = 0x21
	gifAppExtLabel      = 0xFF
	gifAppBlockSize     = 0x0B
	gifAppIdentifier    = "ISFDRAW1" // 8 bytes, GIF89a Application Extension
	gifAppAuthCode      = "ISF"      // 3 bytes
	gifMaxSubBlockBytes = 255
)

var gifAppMarker = append(
	[]byte{gifExtIntroducer, gifAppExtLabel, gifAppBlockSize},
	append([]byte(gifAppIdentifier), []byte(gifAppAuthCode)...)...,
)

// EncodeGIF wraps an encoded ISF stream inside a minimal 1x1 GIF image,
// carrying isfBytes in an Application Extension block placed right before
// the trailer.
func EncodeGIF(isfBytes []byte) ([]byte, error) {
	base := new(bytes.Buffer)
	img := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black})
	if err := gif.Encode(base, img, nil); err != nil {
		return nil, fmt.Errorf("container: encode base gif: %w", err)
	}

	data := base.Bytes()
	if len(data) == 0 || data[len(data)-1] != gifTrailer {
		return nil, fmt.Errorf("container: %w: base gif missing trailer", errs.ErrInternal)
	}

	ext := encodeGIFAppExtension(isfBytes)

	out := make([]byte, 0, len(data)+len(ext))
	out = append(out, data[:len(data)-1]...)
	out = append(out, ext...)
	out = append(out, gifTrailer)

	return out, nil
}

// DecodeGIF locates the ISF Application Extension block in a fortified GIF
// and returns its reassembled payload.
func DecodeGIF(data []byte) ([]byte, error) {
	idx := bytes.Index(data, gifAppMarker)
	if idx < 0 {
		return nil, fmt.Errorf("container: %w: no ISF application extension found in GIF", errs.ErrInvalidStream)
	}

	pos := idx + len(gifAppMarker)
	var payload []byte
	for pos < len(data) {
		n := int(data[pos])
		pos++
		if n == 0 {
			return payload, nil
		}
		if pos+n > len(data) {
			return nil, fmt.Errorf("container: %w: truncated GIF sub-block", errs.ErrInvalidPayload)
		}
		payload = append(payload, data[pos:pos+n]...)
		pos += n
	}

	return nil, fmt.Errorf("container: %w: missing GIF sub-block terminator", errs.ErrInvalidPayload)
}

func encodeGIFAppExtension(payload []byte) []byte {
	out := make([]byte, 0, len(gifAppMarker)+len(payload)+len(payload)/gifMaxSubBlockBytes+2)
	out = append(out, gifAppMarker...)

	for len(payload) > 0 {
		n := len(payload)
		if n > gifMaxSubBlockBytes {
			n = gifMaxSubBlockBytes
		}
		out = append(out, byte(n))
		out = append(out, payload[:n]...)
		payload = payload[n:]
	}
	out = append(out, 0x00)

	return out
}
