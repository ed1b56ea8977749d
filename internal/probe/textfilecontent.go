package probe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

// TextFileContentProbe collects lines matching a pattern from a text file
// for objects of family "textfilecontent". The object carries "filepath"
// and "pattern" fields.
type TextFileContentProbe struct{}

// NewTextFileContentProbe returns the builtin text content probe.
func NewTextFileContentProbe() *TextFileContentProbe {
	return &TextFileContentProbe{}
}

// Family implements Probe.
func (p *TextFileContentProbe) Family() string {
	return "textfilecontent"
}

// Collect implements Probe.
func (p *TextFileContentProbe) Collect(ctx context.Context, obj *defs.Object) ([]syschar.Item, syschar.Flag, error) {
	if err := ctx.Err(); err != nil {
		return nil, syschar.FlagError, err
	}

	path, ok := obj.FieldValue("filepath")
	if !ok || path == "" {
		return nil, syschar.FlagError, fmt.Errorf("object %s has no filepath field", obj.ID)
	}
	pattern, ok := obj.FieldValue("pattern")
	if !ok || pattern == "" {
		return nil, syschar.FlagError, fmt.Errorf("object %s has no pattern field", obj.ID)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		// Bad content in the definitions file, recorded as an error flag.
		return nil, syschar.FlagError, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, syschar.FlagDoesNotExist, nil
	}
	if err != nil {
		return nil, syschar.FlagError, nil
	}
	defer f.Close()

	var items []syschar.Item
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if !re.MatchString(line) {
			continue
		}
		items = append(items, syschar.Item{Fields: []syschar.Field{
			{Name: "filepath", Value: path},
			{Name: "pattern", Value: pattern},
			{Name: "line", Value: strconv.Itoa(lineNo)},
			{Name: "text", Value: line},
		}})
	}
	if err := scanner.Err(); err != nil {
		return nil, syschar.FlagError, nil
	}

	if len(items) == 0 {
		return nil, syschar.FlagDoesNotExist, nil
	}
	return items, syschar.FlagComplete, nil
}
