package reader

import (
	"errors"

	cerrors "github.com/FocuswithJustin/JuniperReader/core/errors"
)

// Messages shown to the reader when a flow fails.
const (
	MsgSearchFailed = "Search failed, please try again"
	MsgNoResults    = "No verses match your search"
	MsgNotFound     = "That passage could not be found"
	MsgUnavailable  = "This version is not available right now"
)

// UserMessage converts an error from a reader flow into the message shown
// to the reader. Validation messages pass through unchanged.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ve *cerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, cerrors.ErrEmptyResult):
		return MsgNoResults
	case errors.Is(err, cerrors.ErrNotFound):
		return MsgNotFound
	case errors.Is(err, cerrors.ErrUnsupported):
		return MsgUnavailable
	default:
		return MsgSearchFailed
	}
}
