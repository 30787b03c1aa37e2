// Package tmworld defines the capability set the compiler needs from its host
// and MathWorld, the single-file implementation used to render one expression.
package tmworld

import (
	"errors"
	"fmt"
	"sync/atomic"

	"oss.terrastruct.com/texmath/tmfonts"
)

// World answers every query the compiler makes about its environment.
type World interface {
	// Library is the standard library the source is compiled against.
	Library() *Library
	// Book is the metadata of every font available to the document.
	Book() *tmfonts.Book
	// Main identifies the file compilation starts from.
	Main() FileID
	// Source returns the text of a source file.
	Source(id FileID) (*Source, error)
	// File returns the raw bytes of a non-source file.
	File(id FileID) ([]byte, error)
	// Font returns the face at index in Book.
	Font(index int) (*tmfonts.Face, bool)
	// Today returns the current date shifted by offset hours from UTC, or local time when
	// offset is nil.
	Today(offset *int64) (Datetime, bool)
}

// FileID identifies a virtual file. Detached IDs are unique even when paths repeat.
type FileID struct {
	path string
	seq  uint64
}

var seq uint64

// NewDetachedID returns an ID that no other call to NewDetachedID returns.
func NewDetachedID(path string) FileID {
	return FileID{
		path: path,
		seq:  atomic.AddUint64(&seq, 1),
	}
}

// NewFileID returns the ID of a regular file at the virtual path.
func NewFileID(path string) FileID {
	return FileID{path: path}
}

func (id FileID) Path() string {
	return id.path
}

func (id FileID) String() string {
	if id.seq != 0 {
		return fmt.Sprintf("%s#%d", id.path, id.seq)
	}
	return id.path
}

type Source struct {
	id   FileID
	text string
}

// NewDetachedSource creates a source not backed by any file.
func NewDetachedSource(path, text string) *Source {
	return &Source{
		id:   NewDetachedID(path),
		text: text,
	}
}

func (s *Source) ID() FileID {
	return s.id
}

func (s *Source) Text() string {
	return s.text
}

type Datetime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

var ErrNotFound = errors.New("file not found")

type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%v (searched at %s)", e.Err, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func notFound(id FileID) error {
	return &FileError{
		Path: id.Path(),
		Err:  ErrNotFound,
	}
}
