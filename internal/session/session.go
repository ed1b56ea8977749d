package session

import (
	"context"

	"github.com/ovalkit/ovalkit/internal/defs"
	"github.com/ovalkit/ovalkit/internal/evaluator"
	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/probe"
	"github.com/ovalkit/ovalkit/internal/results"
	"github.com/ovalkit/ovalkit/internal/syschar"
	"github.com/ovalkit/ovalkit/internal/verdict"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// Session binds one definition model to a named evaluation context. It owns
// the characteristics model it probes, the engine scoring against it, and
// the results model it accumulates; Close releases all of them.
//
// A session is good for one or more evaluations, targeted or full sweep,
// against a single live collection of the system.
type Session struct {
	name      string
	defs      *defs.Model
	logger    *logger.Logger
	syschar   *syschar.Model
	probeSess *probe.Session
	results   *results.Model
	engine    *evaluator.Engine
	collected bool
	closed    bool
}

// New opens a session named after the definitions input (its base name by
// convention). Construction failures are SessionErrors.
func New(definitions *defs.Model, name string, registry *probe.Registry, log *logger.Logger) (*Session, error) {
	if definitions == nil {
		return nil, ovalerrors.NewSessionError(name, "definition model is nil", nil)
	}
	if registry == nil {
		return nil, ovalerrors.NewSessionError(name, "probe registry is nil", nil)
	}

	sysModel, err := syschar.NewModel(definitions)
	if err != nil {
		return nil, ovalerrors.NewSessionError(name, "cannot build characteristics model", err)
	}

	probeSess, err := probe.NewSession(sysModel, registry, log)
	if err != nil {
		return nil, ovalerrors.NewSessionError(name, "cannot open probe session", err)
	}

	resModel, err := results.New(definitions, []*syschar.Model{sysModel})
	if err != nil {
		probeSess.Close()
		return nil, ovalerrors.NewSessionError(name, "cannot build results model", err)
	}

	engine, err := evaluator.New(definitions, sysModel)
	if err != nil {
		probeSess.Close()
		return nil, ovalerrors.NewSessionError(name, "cannot build engine", err)
	}

	return &Session{
		name:      name,
		defs:      definitions,
		logger:    log,
		syschar:   sysModel,
		probeSess: probeSess,
		results:   resModel,
		engine:    engine,
	}, nil
}

// Name returns the session's context name.
func (s *Session) Name() string {
	return s.name
}

// SetSysInfoSource overrides the sysinfo stage, mainly for tests.
func (s *Session) SetSysInfoSource(source probe.SysInfoSource) {
	s.probeSess.SetSysInfoSource(source)
}

// ensureCollected runs the live collection once, before the first
// evaluation: sysinfo first, then every referenced object.
func (s *Session) ensureCollected(ctx context.Context) error {
	if s.collected {
		return nil
	}

	si, err := s.probeSess.QuerySysInfo(ctx)
	if err != nil {
		return err
	}
	if err := s.syschar.SetSysInfo(si); err != nil {
		return ovalerrors.NewSessionError(s.name, "cannot attach sysinfo", err)
	}

	if err := s.probeSess.QueryObjects(ctx); err != nil {
		return err
	}

	s.collected = true
	return nil
}

// EvalDefinition evaluates a single definition against the live system and
// records its verdict in the session's results model.
func (s *Session) EvalDefinition(ctx context.Context, id string) (verdict.Verdict, error) {
	if s.closed {
		return 0, ovalerrors.NewSessionError(s.name, "session is closed", nil)
	}
	if err := s.ensureCollected(ctx); err != nil {
		return 0, err
	}
	return s.record(id)
}

// EvalAll sweeps every definition in document order, invoking the reporter
// once per definition with its verdict. Individual FALSE, UNKNOWN, or
// ERROR verdicts do not abort the sweep; only engine failures do.
func (s *Session) EvalAll(ctx context.Context, reporter verdict.Reporter) error {
	if s.closed {
		return ovalerrors.NewSessionError(s.name, "session is closed", nil)
	}
	if err := s.ensureCollected(ctx); err != nil {
		return err
	}

	for _, def := range s.defs.Definitions() {
		if err := ctx.Err(); err != nil {
			return ovalerrors.NewSessionError(s.name, "sweep cancelled", err)
		}

		v, err := s.record(def.ID)
		if err != nil {
			return err
		}
		if reporter != nil {
			reporter.OnVerdict(def.ID, v)
		}
	}
	return nil
}

// record scores one definition, storing the result unless a previous call
// already did.
func (s *Session) record(id string) (verdict.Verdict, error) {
	sys := s.results.Systems()[0]
	if rec, done := sys.Record(id); done {
		return rec.Verdict, nil
	}

	v, tests, err := s.engine.Evaluate(id)
	if err != nil {
		return 0, err
	}

	def, _ := s.defs.Definition(id)
	rec := results.Record{DefinitionID: id, Verdict: v, Tests: tests}
	if def != nil {
		rec.Title = def.Title
		rec.Version = def.Version
	}
	if err := sys.Append(rec); err != nil {
		return 0, ovalerrors.NewSessionError(s.name, "cannot record verdict", err)
	}

	if s.logger != nil {
		s.logger.WithFields(map[string]any{"definition": id, "verdict": v.Text()}).Debug("definition evaluated")
	}
	return v, nil
}

// Results hands out the accumulated results model. The model stays owned
// by the session and dies with it.
func (s *Session) Results() (*results.Model, error) {
	if s.closed {
		return nil, ovalerrors.NewSessionError(s.name, "session is closed", nil)
	}
	return s.results, nil
}

// Characteristics returns the session's characteristics model.
func (s *Session) Characteristics() *syschar.Model {
	return s.syschar
}

// Close releases the probe session and the internally produced models.
// Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.probeSess != nil {
		err = s.probeSess.Close()
	}
	s.results = nil
	s.engine = nil
	s.syschar = nil
	return err
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	return s.closed
}
