package tableio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the stream compression wrapping a text table.
type Compression string

const (
	// CompressionNone is a plain file.
	CompressionNone Compression = ""
	// CompressionGzip is a gzip stream (.gz).
	CompressionGzip Compression = "gzip"
	// CompressionZstd is a zstandard stream (.zst, .zstd).
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 is an LZ4 frame stream (.lz4).
	CompressionLZ4 Compression = "lz4"
)

// splitCompression returns the compression implied by the last extension of
// path and the path without that extension.
func splitCompression(path string) (Compression, string) {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(path, filepath.Ext(path))
	switch ext {
	case ".gz", ".gzip":
		return CompressionGzip, base
	case ".zst", ".zstd":
		return CompressionZstd, base
	case ".lz4":
		return CompressionLZ4, base
	}
	return CompressionNone, path
}

// readCloser closes a decompressor and the file below it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// decompress wraps r according to c. Closing the result closes r.
func decompress(r io.ReadCloser, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return r, nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, r.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to open zstd stream: %w", err)
		}
		return &readCloser{Reader: zr, closers: []func() error{
			func() error { zr.Close(); return nil },
			r.Close,
		}}, nil
	case CompressionLZ4:
		return &readCloser{Reader: lz4.NewReader(r), closers: []func() error{r.Close}}, nil
	}
	r.Close()
	return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, c)
}

// writeCloser flushes a compressor and closes the file below it.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// compress wraps w according to c. Closing the result flushes the
// compressor and closes w.
func compress(w io.WriteCloser, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return w, nil
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, w.Close}}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, w.Close}}, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, w.Close}}, nil
	}
	w.Close()
	return nil, fmt.Errorf("%w: compression %q", ErrUnsupportedFormat, c)
}
