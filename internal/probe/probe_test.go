package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

func fileObject(id, path string) *defs.Object {
	return &defs.Object{ID: id, Family: "file", Fields: []defs.Field{{Name: "filepath", Value: path}}}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	require.NoError(t, r.Register(NewFileProbe()))

	_, ok := r.Get("file")
	require.True(t, ok)
	_, ok = r.Get("registrykey")
	require.False(t, ok)

	require.Error(t, r.Register(NewFileProbe()))
	require.Error(t, r.Register(nil))
}

func TestDefaultRegistryFamilies(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry(nil)
	require.Equal(t, []string{"environmentvariable", "file", "textfilecontent"}, r.Families())
}

func TestFileProbeCollectsMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "target.conf")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	p := NewFileProbe()
	items, flag, err := p.Collect(context.Background(), fileObject("oval:x:obj:1", path))
	require.NoError(t, err)
	require.Equal(t, syschar.FlagComplete, flag)
	require.Len(t, items, 1)

	fileType, ok := items[0].FieldValue("type")
	require.True(t, ok)
	require.Equal(t, "regular", fileType)

	mode, ok := items[0].FieldValue("mode")
	require.True(t, ok)
	require.Equal(t, "0644", mode)

	size, ok := items[0].FieldValue("size")
	require.True(t, ok)
	require.Equal(t, "6", size)
}

func TestFileProbeMissingFile(t *testing.T) {
	t.Parallel()

	p := NewFileProbe()
	items, flag, err := p.Collect(context.Background(), fileObject("oval:x:obj:1", filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)
	require.Nil(t, items)
	require.Equal(t, syschar.FlagDoesNotExist, flag)
}

func TestFileProbeDirectoryType(t *testing.T) {
	t.Parallel()

	p := NewFileProbe()
	items, flag, err := p.Collect(context.Background(), fileObject("oval:x:obj:1", t.TempDir()))
	require.NoError(t, err)
	require.Equal(t, syschar.FlagComplete, flag)

	fileType, _ := items[0].FieldValue("type")
	require.Equal(t, "directory", fileType)
}

func TestFileProbeObjectWithoutFilepathIsStageError(t *testing.T) {
	t.Parallel()

	p := NewFileProbe()
	_, flag, err := p.Collect(context.Background(), &defs.Object{ID: "oval:x:obj:1", Family: "file"})
	require.Error(t, err)
	require.Equal(t, syschar.FlagError, flag)
}

func TestEnvironmentVariableProbe(t *testing.T) {
	t.Setenv("OVALKIT_PROBE_TEST", "enabled")

	p := NewEnvironmentVariableProbe()
	obj := &defs.Object{ID: "oval:x:obj:1", Family: "environmentvariable",
		Fields: []defs.Field{{Name: "name", Value: "OVALKIT_PROBE_TEST"}}}

	items, flag, err := p.Collect(context.Background(), obj)
	require.NoError(t, err)
	require.Equal(t, syschar.FlagComplete, flag)

	value, ok := items[0].FieldValue("value")
	require.True(t, ok)
	require.Equal(t, "enabled", value)

	absent := &defs.Object{ID: "oval:x:obj:2", Family: "environmentvariable",
		Fields: []defs.Field{{Name: "name", Value: "OVALKIT_PROBE_TEST_ABSENT"}}}
	_, flag, err = p.Collect(context.Background(), absent)
	require.NoError(t, err)
	require.Equal(t, syschar.FlagDoesNotExist, flag)
}

func TestTextFileContentProbe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sshd_config")
	require.NoError(t, os.WriteFile(path, []byte("Port 22\nPermitRootLogin no\nPort 2222\n"), 0o644))

	p := NewTextFileContentProbe()
	obj := &defs.Object{ID: "oval:x:obj:1", Family: "textfilecontent", Fields: []defs.Field{
		{Name: "filepath", Value: path},
		{Name: "pattern", Value: `^Port\s+\d+$`},
	}}

	items, flag, err := p.Collect(context.Background(), obj)
	require.NoError(t, err)
	require.Equal(t, syschar.FlagComplete, flag)
	require.Len(t, items, 2)

	line, _ := items[1].FieldValue("line")
	require.Equal(t, "3", line)
	text, _ := items[1].FieldValue("text")
	require.Equal(t, "Port 2222", text)
}

func TestTextFileContentProbeNoMatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.conf")
	require.NoError(t, os.WriteFile(path, []byte("nothing here\n"), 0o644))

	p := NewTextFileContentProbe()
	obj := &defs.Object{ID: "oval:x:obj:1", Family: "textfilecontent", Fields: []defs.Field{
		{Name: "filepath", Value: path},
		{Name: "pattern", Value: `^Port`},
	}}

	_, flag, err := p.Collect(context.Background(), obj)
	require.NoError(t, err)
	require.Equal(t, syschar.FlagDoesNotExist, flag)
}

func TestTextFileContentProbeBadPatternIsErrorFlag(t *testing.T) {
	t.Parallel()

	p := NewTextFileContentProbe()
	obj := &defs.Object{ID: "oval:x:obj:1", Family: "textfilecontent", Fields: []defs.Field{
		{Name: "filepath", Value: "/etc/hosts"},
		{Name: "pattern", Value: "(["},
	}}

	_, flag, err := p.Collect(context.Background(), obj)
	require.NoError(t, err)
	require.Equal(t, syschar.FlagError, flag)
}

func TestLocalSysInfo(t *testing.T) {
	t.Parallel()

	si, err := LocalSysInfo(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, si.OSName)
	require.NotEmpty(t, si.Architecture)
	require.NotEmpty(t, si.PrimaryHostName)
}
