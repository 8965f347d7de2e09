package container_test

import (
	"testing"

	"github.com/inkstream/isf/container"
	"github.com/stretchr/testify/require"
)

func TestPNGRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x0A, 0xDE, 0xAD, 0xBE, 0xEF, 0x00}

	wrapped, err := container.EncodePNG(payload)
	require.NoError(t, err)
	require.True(t, len(wrapped) > len(payload))

	got, err := container.DecodePNG(wrapped)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestPNGDecodeRejectsNonPNGInput(t *testing.T) {
	_, err := container.DecodePNG([]byte("not a png"))
	require.Error(t, err)
}

func TestGIFRoundTrip(t *testing.T) {
	payload := make([]byte, 600) // exceeds one 255-byte GIF sub-block
	for i := range payload {
		payload[i] = byte(i)
	}

	wrapped, err := container.EncodeGIF(payload)
	require.NoError(t, err)

	got, err := container.DecodeGIF(wrapped)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestGIFDecodeRejectsMissingExtension(t *testing.T) {
	_, err := container.DecodeGIF([]byte("GIF89a no extension here"))
	require.Error(t, err)
}

func TestGIFRoundTripEmptyPayload(t *testing.T) {
	wrapped, err := container.EncodeGIF(nil)
	require.NoError(t, err)

	got, err := container.DecodeGIF(wrapped)
	require.NoError(t, err)
	require.Empty(t, got)
}
