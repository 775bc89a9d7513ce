package stream

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aluiziolira/go-cat-gallery/models"
)

// RecordWriter defines the interface for record output.
type RecordWriter interface {
	Write(rec models.DisplayRecord) error
	Close() error
}

// NewWriter returns the writer for a format: text, csv, or json.
func NewWriter(format string, w io.Writer) (RecordWriter, error) {
	switch format {
	case "text":
		return NewTextWriter(w), nil
	case "csv":
		return NewCSVWriter(w)
	case "json":
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// CSVWriter writes records to CSV.
type CSVWriter struct {
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	writer := csv.NewWriter(w)
	header := []string{"time", "status", "image_url", "alt", "error"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv header: %w", err)
	}
	return &CSVWriter{writer: writer}, nil
}

// Write appends one record to the CSV output.
func (cw *CSVWriter) Write(rec models.DisplayRecord) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	record := []string{
		rec.Time.Format(time.RFC3339),
		rec.Status,
		rec.ImageURL,
		rec.Alt,
		rec.Error,
	}
	if err := cw.writer.Write(record); err != nil {
		return fmt.Errorf("write csv record: %w", err)
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv record: %w", err)
	}
	return nil
}

// Close flushes buffered rows.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	buffer := bufio.NewWriter(w)
	return &JSONWriter{
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}
}

// Write appends one record in JSONL format.
func (jw *JSONWriter) Write(rec models.DisplayRecord) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.encoder.Encode(rec); err != nil {
		return fmt.Errorf("encode json record: %w", err)
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// TextWriter writes one human-readable line per record.
type TextWriter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTextWriter initialises the text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Write prints the image URL, or the error shown instead of it.
func (tw *TextWriter) Write(rec models.DisplayRecord) error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	line := rec.ImageURL
	if rec.Error != "" {
		line = "error: " + rec.Error
	} else if line == "" {
		line = rec.Alt
	}
	if _, err := fmt.Fprintln(tw.w, line); err != nil {
		return fmt.Errorf("write text record: %w", err)
	}
	return nil
}

// Close is a no-op; lines are written unbuffered.
func (tw *TextWriter) Close() error {
	return nil
}
