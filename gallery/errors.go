package gallery

import (
	"context"
	"errors"

	"github.com/aluiziolira/go-cat-gallery/fetcher"
	"github.com/aluiziolira/go-cat-gallery/parser"
)

// Error kinds, used as the Kind of a failed FetchAttempt and as metric labels.
const (
	KindNetwork       = "network"
	KindHTTP          = "http"
	KindEmptyResult   = "empty_result"
	KindMissingURL    = "missing_url"
	KindMalformedBody = "malformed_body"
	KindImageDecode   = "image_decode"
	KindCanceled      = "canceled"
	KindOther         = "other"
)

// User-facing text.
const (
	MessagePrefix      = "Sorry, we couldn't fetch a cat photo right now. "
	MessageNetwork     = MessagePrefix + "Please check your internet connection and try again."
	MessageHTTP        = MessagePrefix + "The cat service is temporarily unavailable. Please try again later."
	MessageGeneric     = MessagePrefix + "Please try again in a moment."
	MessageImageDecode = "The cat photo failed to load. Please try getting a new one!"

	AltPlaceholder = "Press enter to see a cute cat! 🐱"
	AltLoaded      = "Random cat photo"

	LabelReady   = "Get New Cat Photo"
	LabelLoading = "Loading..."
)

// Kind maps an attempt error to its kind label.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	// shutdown, not a fault; deadlines are reported as timeouts by the fetcher
	if errors.Is(err, context.Canceled) && !fetcher.IsNetwork(err) {
		return KindCanceled
	}
	if fetcher.IsNetwork(err) {
		return KindNetwork
	}
	var httpErr fetcher.ErrHTTPStatus
	if errors.As(err, &httpErr) {
		return KindHTTP
	}
	if errors.Is(err, parser.ErrEmptyResult) {
		return KindEmptyResult
	}
	if errors.Is(err, parser.ErrMissingURL) {
		return KindMissingURL
	}
	var malformed parser.ErrMalformedBody
	if errors.As(err, &malformed) {
		return KindMalformedBody
	}
	return KindOther
}

// Message maps an error kind to the text shown on the display surface.
func Message(kind string) string {
	switch kind {
	case KindNetwork:
		return MessageNetwork
	case KindHTTP:
		return MessageHTTP
	case KindImageDecode:
		return MessageImageDecode
	default:
		return MessageGeneric
	}
}
