package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/probe"
	"github.com/ovalkit/ovalkit/internal/syschar"
)

// sweepDefinitions declares three definitions whose verdicts the fake file
// probe drives to true, false and not applicable.
const sweepDefinitions = `<oval_definitions schema_version="5.11">
  <definitions>
    <definition id="oval:cmd:def:1" version="1" class="compliance">
      <metadata><title>present</title></metadata>
      <criteria><criterion test_ref="oval:cmd:tst:1"/></criteria>
    </definition>
    <definition id="oval:cmd:def:2" version="1" class="compliance">
      <metadata><title>absent</title></metadata>
      <criteria><criterion test_ref="oval:cmd:tst:2"/></criteria>
    </definition>
    <definition id="oval:cmd:def:3" version="1" class="compliance">
      <metadata><title>not ours</title></metadata>
      <criteria><criterion test_ref="oval:cmd:tst:3"/></criteria>
    </definition>
  </definitions>
  <tests>
    <test id="oval:cmd:tst:1"><object object_ref="oval:cmd:obj:1"/></test>
    <test id="oval:cmd:tst:2"><object object_ref="oval:cmd:obj:2"/></test>
    <test id="oval:cmd:tst:3"><object object_ref="oval:cmd:obj:3"/></test>
  </tests>
  <objects>
    <object id="oval:cmd:obj:1" family="file"><field name="filepath">/etc/hosts</field></object>
    <object id="oval:cmd:obj:2" family="file"><field name="filepath">/etc/nope</field></object>
    <object id="oval:cmd:obj:3" family="file"><field name="filepath">/etc/other</field></object>
  </objects>
</oval_definitions>`

type cmdFakeProbe struct {
	flags map[string]syschar.Flag
	err   error
}

func (p *cmdFakeProbe) Family() string { return "file" }

func (p *cmdFakeProbe) Collect(_ context.Context, obj *defs.Object) ([]syschar.Item, syschar.Flag, error) {
	if p.err != nil {
		return nil, syschar.FlagError, p.err
	}
	flag, ok := p.flags[obj.ID]
	if !ok {
		flag = syschar.FlagComplete
	}
	if flag != syschar.FlagComplete {
		return nil, flag, nil
	}
	return []syschar.Item{{Fields: []syschar.Field{{Name: "type", Value: "regular"}}}}, flag, nil
}

// useFakeProbes reroutes the probe wiring for the duration of one test.
// Tests relying on it must not run in parallel.
func useFakeProbes(t *testing.T, fake *cmdFakeProbe) {
	t.Helper()

	origRegistry := newProbeRegistry
	origSource := sysInfoSource
	t.Cleanup(func() {
		newProbeRegistry = origRegistry
		sysInfoSource = origSource
	})

	newProbeRegistry = func(log *logger.Logger) *probe.Registry {
		registry := probe.NewRegistry(log)
		if err := registry.Register(fake); err != nil {
			t.Fatalf("register fake probe: %v", err)
		}
		return registry
	}
	sysInfoSource = func(context.Context) (*syschar.SysInfo, error) {
		return &syschar.SysInfo{OSName: "testos", PrimaryHostName: "fixture"}, nil
	}
}

func sweepFake() *cmdFakeProbe {
	return &cmdFakeProbe{flags: map[string]syschar.Flag{
		"oval:cmd:obj:2": syschar.FlagDoesNotExist,
		"oval:cmd:obj:3": syschar.FlagNotApplicable,
	}}
}

func writeFixture(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// execute runs the root command with args, capturing stdout and stderr.
func execute(args ...string) (stdout, stderr string, err error) {
	root := newRootCmd()
	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	root.SetArgs(args)

	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

// exitCode maps an Execute error back to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var status *statusError
	if errors.As(err, &status) {
		return status.code
	}
	return exitErr
}
