package mapcodec

import (
	"errors"

	"github.com/pspoerri/mapcodec/internal/bitio"
)

// Errors surfaced by Encode and Decode. All abort the call; partial results
// are never returned. Use errors.Is to test for them through wrapping.
var (
	// ErrUnsupportedVersion: the stream's version field lies outside
	// [MinimumVersion, CurrentVersion].
	ErrUnsupportedVersion = errors.New("mapcodec: unsupported codec version")
	// ErrUnknownTileType: a cell references a palette index the input map
	// does not define.
	ErrUnknownTileType = errors.New("mapcodec: unknown tile type")
	// ErrInvalidInput: the caller-provided map fails basic shape or range checks.
	ErrInvalidInput = errors.New("mapcodec: invalid input map")
	// ErrInvalidStepCode: reserved for extensions; unreachable with 2-bit
	// step codes.
	ErrInvalidStepCode = errors.New("mapcodec: invalid step code")

	// ErrStringTooLong: a palette string exceeds its field limit on encode.
	ErrStringTooLong = bitio.ErrStringTooLong
	// ErrInvalidString: a decoded string length header exceeds its field limit.
	ErrInvalidString = bitio.ErrInvalidString
	// ErrTruncated: the stream ended mid-field on decode.
	ErrTruncated = bitio.ErrTruncated
)
