package probe

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

// FileProbe collects filesystem metadata for objects of family "file".
// The object must carry a "filepath" field.
type FileProbe struct{}

// NewFileProbe returns the builtin file probe.
func NewFileProbe() *FileProbe {
	return &FileProbe{}
}

// Family implements Probe.
func (p *FileProbe) Family() string {
	return "file"
}

// Collect implements Probe.
func (p *FileProbe) Collect(ctx context.Context, obj *defs.Object) ([]syschar.Item, syschar.Flag, error) {
	if err := ctx.Err(); err != nil {
		return nil, syschar.FlagError, err
	}

	path, ok := obj.FieldValue("filepath")
	if !ok || path == "" {
		return nil, syschar.FlagError, fmt.Errorf("object %s has no filepath field", obj.ID)
	}

	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil, syschar.FlagDoesNotExist, nil
	}
	if err != nil {
		// Recorded, not fatal: one unreadable path must not abort the run.
		return nil, syschar.FlagError, nil
	}

	fileType := "regular"
	switch {
	case info.IsDir():
		fileType = "directory"
	case info.Mode()&os.ModeSymlink != 0:
		fileType = "symlink"
	case info.Mode()&os.ModeNamedPipe != 0:
		fileType = "fifo"
	case info.Mode()&os.ModeSocket != 0:
		fileType = "socket"
	}

	item := syschar.Item{Fields: []syschar.Field{
		{Name: "filepath", Value: path},
		{Name: "type", Value: fileType},
		{Name: "size", Value: strconv.FormatInt(info.Size(), 10)},
		{Name: "mode", Value: fmt.Sprintf("%04o", info.Mode().Perm())},
	}}

	return []syschar.Item{item}, syschar.FlagComplete, nil
}
