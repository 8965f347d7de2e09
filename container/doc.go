// Package container implements the "fortified" GIF/PNG collaborators named
// in spec.md §6: a GIF or PNG image that carries a raw ISF byte stream
// inside an ancillary chunk / application extension, alongside a normal
// (if minimal) displayable image.
//
// Spec.md §6 explicitly leaves the chunk marker layout opaque to the core
// ("the chunk marker layout is opaque to the core") and SPEC_FULL.md §C.5
// scopes this package to a self-consistent round-trip of this library's own
// EncodeGIF/EncodePNG output rather than general interop with other ISF-fortified
// tools, since no such layout is specified anywhere in the retrieved
// materials.
//
// PNG: the ISF payload is stored in a private ancillary chunk named
// "isFd" (lowercase first letter marks it ancillary per the PNG chunk
// naming convention; readers that don't understand it are required by the
// PNG spec to skip it safely), inserted immediately after IHDR.
//
// GIF: the ISF payload is stored in a GIF89a Application Extension block
// (introducer 0x21, label 0xFF) with application identifier "ISFDRAW1" and
// authentication code "ISF", its data split across 255-byte sub-blocks per
// the GIF89a grammar, inserted immediately before the trailer byte (0x3B).
package container
