package parser

import (
	"errors"
	"testing"

	"github.com/aluiziolira/go-cat-gallery/models"
)

func TestParseImages(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantErr   bool
	}{
		{
			name:      "single record",
			body:      `[{"id":"abc","url":"https://example/cat1.jpg","width":640,"height":480}]`,
			wantCount: 1,
		},
		{
			name:      "empty array",
			body:      `[]`,
			wantCount: 0,
		},
		{
			name:      "null body",
			body:      `null`,
			wantCount: 0,
		},
		{
			name:      "blank body",
			body:      "  \n",
			wantCount: 0,
		},
		{
			name:    "object instead of array",
			body:    `{"message":"rate limited"}`,
			wantErr: true,
		},
		{
			name:    "truncated json",
			body:    `[{"url":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := ParseImages([]byte(tt.body))
			if tt.wantErr {
				var malformed ErrMalformedBody
				if !errors.As(err, &malformed) {
					t.Fatalf("ParseImages() error = %v, want ErrMalformedBody", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseImages() unexpected error: %v", err)
			}
			if len(images) != tt.wantCount {
				t.Fatalf("ParseImages() returned %d images, want %d", len(images), tt.wantCount)
			}
		})
	}
}

func TestParseImagesFields(t *testing.T) {
	images, err := ParseImages([]byte(`[{"id":"abc","url":"https://example/cat1.jpg","width":640,"height":480}]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := images[0]
	if got.ID != "abc" || got.URL != "https://example/cat1.jpg" || got.Width != 640 || got.Height != 480 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestFirstURL(t *testing.T) {
	tests := []struct {
		name    string
		images  []models.CatImage
		want    string
		wantErr error
	}{
		{
			name:    "nil list",
			images:  nil,
			wantErr: ErrEmptyResult,
		},
		{
			name:    "empty list",
			images:  []models.CatImage{},
			wantErr: ErrEmptyResult,
		},
		{
			name:    "missing url",
			images:  []models.CatImage{{ID: "abc"}},
			wantErr: ErrMissingURL,
		},
		{
			name:    "whitespace url",
			images:  []models.CatImage{{URL: "   "}},
			wantErr: ErrMissingURL,
		},
		{
			name:    "relative url",
			images:  []models.CatImage{{URL: "/images/cat.jpg"}},
			wantErr: ErrMissingURL,
		},
		{
			name:    "unsupported scheme",
			images:  []models.CatImage{{URL: "ftp://example/cat.jpg"}},
			wantErr: ErrMissingURL,
		},
		{
			name:   "first record wins",
			images: []models.CatImage{{URL: "https://example/cat1.jpg"}, {URL: "https://example/cat2.jpg"}},
			want:   "https://example/cat1.jpg",
		},
		{
			name:   "trims whitespace",
			images: []models.CatImage{{URL: "  https://example/cat1.jpg "}},
			want:   "https://example/cat1.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FirstURL(tt.images)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("FirstURL() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FirstURL() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FirstURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateImageNil(t *testing.T) {
	if err := ValidateImage(nil); !errors.Is(err, ErrMissingURL) {
		t.Fatalf("ValidateImage(nil) = %v, want ErrMissingURL", err)
	}
}
