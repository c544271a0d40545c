package importer

import (
	"errors"
	"fmt"
)

var (
	ErrNoFiles         = errors.New("enter at least one tag file")
	ErrNoTagsInFile    = errors.New("no tags found in file")
	ErrInvalidEncoding = errors.New("line is not valid UTF-8")
)

// ImportError aborts an import run. Tag is the first word of the failing line,
// empty when the file itself could not be read.
type ImportError struct {
	Path string
	Line int
	Tag  string
	Err  error
}

func (e *ImportError) Error() string {
	switch {
	case errors.Is(e.Err, ErrNoTagsInFile):
		return fmt.Sprintf("No tags found in %q. (File format may be invalid.)", e.Path)
	case e.Tag == "":
		return fmt.Sprintf("Problem reading %q: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("Problem adding tag %q: %v", e.Tag, e.Err)
	}
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
