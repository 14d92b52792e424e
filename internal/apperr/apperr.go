// Package apperr defines the coded business errors surfaced by the
// service layer. Every rejection a caller can recover from carries a
// stable numeric code together with its canonical message; handlers
// translate the kind into an HTTP status and pass the code through
// verbatim. Storage faults are not wrapped in this type and propagate
// as plain errors.
package apperr

import "errors"

// Kind separates caller mistakes from missing resources.
type Kind int

const (
	// KindBadRequest covers invalid or conflicting input supplied by
	// the caller (blank fields, duplicates, already-reserved seats).
	KindBadRequest Kind = iota
	// KindNotFound covers lookups where a required resource is absent
	// or soft-deleted.
	KindNotFound
)

// Stable error codes. The numeric values are part of the external
// contract and must not be renumbered.
const (
	CodeMovieTitleInvalid       = 40001
	CodeMovieDescriptionInvalid = 40002
	CodeMovieImageURLInvalid    = 40003
	CodeMovieTitleTaken         = 40004
	CodeMovieNotFound           = 40005
	CodeMovieHasReservations    = 40006
	CodeShowtimeDateInvalid     = 40007
	CodeShowtimeTimeInvalid     = 40008
	CodeShowtimeExists          = 40009
	CodeShowtimeNotFound        = 40010
	CodeSeatsInvalid            = 40011
	CodeSeatsAlreadyReserved    = 40012
	CodeMovieMissing            = 40401
	CodeShowtimeMissing         = 40402
)

// messageByCode is the static code registry, fixed at process start.
var messageByCode = map[int]string{
	CodeMovieTitleInvalid:       "Movie title is invalid",
	CodeMovieDescriptionInvalid: "Movie description is invalid",
	CodeMovieImageURLInvalid:    "Movie image url is invalid",
	CodeMovieTitleTaken:         "Movie already exists with the given title",
	CodeMovieNotFound:           "Movie not found",
	CodeMovieHasReservations:    "At least one showtime reservation is purchased",
	CodeShowtimeDateInvalid:     "Showtime date is invalid",
	CodeShowtimeTimeInvalid:     "Showtime time is invalid",
	CodeShowtimeExists:          "Showtime already exists",
	CodeShowtimeNotFound:        "Showtime not found",
	CodeSeatsInvalid:            "Seats are not valid",
	CodeSeatsAlreadyReserved:    "Seats already reserved",
	CodeMovieMissing:            "Movie not found",
	CodeShowtimeMissing:         "Showtime not found",
}

// Error is a coded business error.
type Error struct {
	Code int
	Kind Kind
}

// Error returns the registered message for the code.
func (e *Error) Error() string { return Message(e.Code) }

// Message looks up the canonical message for a code. Unknown codes map
// to a generic message rather than an empty string.
func Message(code int) string {
	if msg, ok := messageByCode[code]; ok {
		return msg
	}
	return "Unknown error"
}

// BadRequest builds a caller-input error for the given code.
func BadRequest(code int) *Error { return &Error{Code: code, Kind: KindBadRequest} }

// NotFound builds a missing-resource error for the given code.
func NotFound(code int) *Error { return &Error{Code: code, Kind: KindNotFound} }

// As unwraps err into an *Error when it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
