// Package jsonfile loads the dataset collections from a directory of JSON
// array files.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.RecordSource = (*Loader)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encoding is one decode attempt. decode returns an error when the bytes
// cannot be in this encoding.
type encoding struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// encodings are tried in order until one yields a valid collection.
var encodings = []encoding{
	{"utf-8", func(b []byte) ([]byte, error) {
		if bytes.HasPrefix(b, utf8BOM) {
			return nil, errors.New("byte order mark present")
		}
		if !utf8.Valid(b) {
			return nil, errors.New("invalid UTF-8")
		}
		return b, nil
	}},
	{"utf-8-sig", func(b []byte) ([]byte, error) {
		if !bytes.HasPrefix(b, utf8BOM) {
			return nil, errors.New("no byte order mark")
		}
		return unicode.UTF8BOM.NewDecoder().Bytes(b)
	}},
	{"windows-1252", func(b []byte) ([]byte, error) {
		return charmap.Windows1252.NewDecoder().Bytes(b)
	}},
}

// Loader reads every manifest collection from one directory.
type Loader struct {
	dir string
}

// NewLoader creates a loader for dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the data directory being read.
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads the dataset. Only a missing or unreadable directory is fatal;
// problems with individual files are collected in Dataset.Problems.
func (l *Loader) Load(ctx context.Context) (*domain.Dataset, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: data directory %s: %w", domain.ErrLoad, l.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrLoad, l.dir)
	}

	ds := domain.NewDataset()
	for _, cs := range domain.Manifest() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, ok := l.locate(cs)
		if !ok {
			logger.Debug("%s: no file found, collection is empty", cs.Name)
			continue
		}

		records, err := readCollection(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", cs.Name, err)
			ds.Problems = append(ds.Problems, err)
			continue
		}
		ds.Collections[cs.Name] = records
		logger.Debug("%s: %d records from %s", cs.Name, len(records), filepath.Base(path))
	}

	return ds, nil
}

// locate returns the first candidate file of cs that exists.
func (l *Loader) locate(cs domain.CollectionSpec) (string, bool) {
	for _, name := range cs.Files {
		path := filepath.Join(l.dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// readCollection decodes a file with each encoding in turn.
func readCollection(path string) ([]domain.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ParseError{File: path, Err: err}
	}

	perr := &domain.ParseError{File: path}
	for _, enc := range encodings {
		perr.Encodings = append(perr.Encodings, enc.name)

		text, err := enc.decode(raw)
		if err != nil {
			perr.Err = err
			continue
		}
		records, err := decodeRecords(text)
		if err != nil {
			perr.Err = err
			continue
		}
		return records, nil
	}
	return nil, perr
}

// decodeRecords parses a top-level JSON array of objects, keeping numbers
// as json.Number.
func decodeRecords(data []byte) ([]domain.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, errors.New("top-level value is not an array")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level array")
	}

	records := make([]domain.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("element %d is not an object", i)
		}
		records = append(records, domain.Record(obj))
	}
	return records, nil
}

// WatchedFiles returns the base names of every candidate collection file.
func WatchedFiles() []string {
	var files []string
	for _, cs := range domain.Manifest() {
		files = append(files, cs.Files...)
	}
	return files
}
