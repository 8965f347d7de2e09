package format

// KnownGUIDBaseIndex is the lowest index in the well-known packet-property
// GUID table (original_source/include/isfqt.h's PacketProperty enum). A
// custom GUID recognised as one of these carries the name below instead of
// an opaque 16-byte identifier.
const KnownGUIDBaseIndex = 50

// knownGUIDNames is indexed by id - KnownGUIDBaseIndex, taken verbatim from
// the PacketProperty enum (GUID_X .. GUID_ROP, 38 entries).
var knownGUIDNames = [...]string{
	"X",
	"Y",
	"Z",
	"PACKET_STATUS",
	"TIMER_TICK",
	"SERIAL_NUMBER",
	"NORMAL_PRESSURE",
	"TANGENT_PRESSURE",
	"BUTTON_PRESSURE",
	"X_TILT_ORIENTATION",
	"Y_TILT_ORIENTATION",
	"AZIMUTH_ORIENTATION",
	"ALTITUDE_ORIENTATION",
	"TWIST_ORIENTATION",
	"PITCH_ROTATION",
	"ROLL_ROTATION",
	"YAW_ROTATION",
	"PEN_STYLE",
	"COLORREF",
	"PEN_WIDTH",
	"PEN_HEIGHT",
	"PEN_TIP",
	"DRAWING_FLAGS",
	"CURSORID",
	"WORD_ALTERNATES",
	"CHAR_ALTERNATES",
	"INKMETRICS",
	"GUIDE_STRUCTURE",
	"TIME_STAMP",
	"LANGUAGE",
	"TRANSPARENCY",
	"CURVE_FITTING_ERROR",
	"RECO_LATTICE",
	"CURSORDOWN",
	"SECONDARYTIPSWITCH",
	"BARRELDOWN",
	"TABLETPICK",
	"ROP",
}

// KnownGUIDName returns the name of a well-known packet-property GUID index
// (spec.md §3's "known property id", supplemented per SPEC_FULL.md §C.1),
// for diagnostics. ok is false outside the known range.
func KnownGUIDName(id uint32) (string, bool) {
	if id < KnownGUIDBaseIndex {
		return "", false
	}
	offset := int(id - KnownGUIDBaseIndex)
	if offset >= len(knownGUIDNames) {
		return "", false
	}

	return knownGUIDNames[offset], true
}
