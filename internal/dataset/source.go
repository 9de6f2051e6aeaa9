// Listingscope - Airbnb Listings Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/listingscope

package dataset

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/tomtom215/listingscope/internal/config"
)

// Source yields the raw CSV bytes of a listings export.
type Source interface {
	// Open returns the (decompressed) CSV stream. It returns ErrNotModified
	// when the source is unchanged since the last committed load.
	Open(ctx context.Context) (io.ReadCloser, error)

	// String names the source for logs.
	String() string
}

// committer is implemented by sources that remember what was last loaded.
// The store calls commit only after the stream parsed successfully.
type committer interface {
	commit()
}

// NewSource builds the Source described by cfg.
func NewSource(cfg config.DatasetConfig) Source {
	if cfg.IsRemote() {
		return NewHTTPSource(cfg.Source, cfg.FetchTimeout, cfg.FetchMinInterval)
	}
	return NewFileSource(cfg.Source)
}

// FileSource reads a local CSV or CSV.gz file.
type FileSource struct {
	path string

	mu        sync.Mutex
	committed fileStamp
	pending   fileStamp
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open implements Source.
func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", s.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat dataset %s: %w", s.path, err)
	}

	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
	s.mu.Lock()
	unchanged := !s.committed.modTime.IsZero() && s.committed == stamp
	s.pending = stamp
	s.mu.Unlock()
	if unchanged {
		_ = f.Close()
		return nil, ErrNotModified
	}

	return decompress(f)
}

func (s *FileSource) commit() {
	s.mu.Lock()
	s.committed = s.pending
	s.mu.Unlock()
}

// String implements Source.
func (s *FileSource) String() string {
	return s.path
}

// readCloser couples a (possibly decompressing) reader with the closers of
// every layer beneath it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// decompress sniffs the gzip magic number and transparently inflates.
func decompress(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(rc, 64*1024)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	}
	return &readCloser{Reader: br, closers: []func() error{rc.Close}}, nil
}

// BytesSource serves an in-memory CSV export. It never reports ErrNotModified.
type BytesSource struct {
	name string
	data []byte
}

// NewBytesSource creates a BytesSource.
func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

// Open implements Source.
func (s *BytesSource) Open(_ context.Context) (io.ReadCloser, error) {
	return decompress(io.NopCloser(bytes.NewReader(s.data)))
}

// String implements Source.
func (s *BytesSource) String() string {
	return s.name
}
