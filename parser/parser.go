package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aluiziolira/go-cat-gallery/models"
)

var (
	// ErrEmptyResult is returned when the response carries no image records.
	ErrEmptyResult = errors.New("no cat images found in the response")
	// ErrMissingURL is returned when the first record has no usable URL.
	ErrMissingURL = errors.New("no valid image URL found")
)

// ErrMalformedBody indicates the response body is not a JSON array of records.
type ErrMalformedBody struct {
	Err error
}

func (e ErrMalformedBody) Error() string {
	return fmt.Errorf("malformed body: %w", e.Err).Error()
}

func (e ErrMalformedBody) Unwrap() error {
	return e.Err
}

// ParseImages decodes the search response body.
// A JSON null decodes to an empty list.
func ParseImages(body []byte) ([]models.CatImage, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var images []models.CatImage
	if err := json.Unmarshal(body, &images); err != nil {
		return nil, ErrMalformedBody{Err: err}
	}
	return images, nil
}

// FirstURL returns the URL of the first record.
func FirstURL(images []models.CatImage) (string, error) {
	if len(images) == 0 {
		return "", ErrEmptyResult
	}
	first := images[0]
	if err := ValidateImage(&first); err != nil {
		return "", err
	}
	return strings.TrimSpace(first.URL), nil
}

// ValidateImage ensures the record carries an absolute http(s) URL.
func ValidateImage(img *models.CatImage) error {
	if img == nil {
		return ErrMissingURL
	}
	raw := strings.TrimSpace(img.URL)
	if raw == "" {
		return ErrMissingURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrMissingURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url has no host", ErrMissingURL)
	}
	return nil
}
