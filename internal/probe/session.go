package probe

import (
	"context"
	"fmt"

	"github.com/ovalkit/ovalkit/internal/logger"
	"github.com/ovalkit/ovalkit/internal/syschar"
	ovalerrors "github.com/ovalkit/ovalkit/pkg/errors"
)

// SysInfoSource produces host metadata for the sysinfo query stage.
type SysInfoSource func(ctx context.Context) (*syschar.SysInfo, error)

// Session drives live collection into one characteristics model. The
// session owns no data; it writes into the bound model and must be closed
// by whoever opened it, on every exit path.
type Session struct {
	model    *syschar.Model
	registry *Registry
	sysinfo  SysInfoSource
	logger   *logger.Logger
	closed   bool
}

// NewSession opens a collection session bound to a characteristics model.
func NewSession(model *syschar.Model, registry *Registry, log *logger.Logger) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("characteristics model is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("probe registry is nil")
	}
	return &Session{
		model:    model,
		registry: registry,
		sysinfo:  LocalSysInfo,
		logger:   log,
	}, nil
}

// SetSysInfoSource overrides how the sysinfo stage gathers host metadata.
func (s *Session) SetSysInfoSource(source SysInfoSource) {
	if source != nil {
		s.sysinfo = source
	}
}

// QuerySysInfo gathers host metadata. The caller attaches the returned
// value to the model; the session does not do it implicitly, matching the
// two-step collect flow.
func (s *Session) QuerySysInfo(ctx context.Context) (*syschar.SysInfo, error) {
	if s.closed {
		return nil, ovalerrors.NewProbeError("sysinfo query", "", fmt.Errorf("session is closed"))
	}
	if err := ctx.Err(); err != nil {
		return nil, ovalerrors.NewProbeError("sysinfo query", "", err)
	}

	si, err := s.sysinfo(ctx)
	if err != nil {
		return nil, ovalerrors.NewProbeError("sysinfo query", "", err)
	}
	return si, nil
}

// QueryObjects collects every object the bound definition model references.
// Per-object probe trouble is recorded in the model as an error flag and
// collection continues; the stage itself fails only on cancellation, a
// closed session, or a model that rejects the collected data.
func (s *Session) QueryObjects(ctx context.Context) error {
	if s.closed {
		return ovalerrors.NewProbeError("object query", "", fmt.Errorf("session is closed"))
	}

	for i := range s.model.Definitions().Objects() {
		obj := &s.model.Definitions().Objects()[i]

		if err := ctx.Err(); err != nil {
			return ovalerrors.NewProbeError("object query", obj.ID, err)
		}

		impl, ok := s.registry.Get(obj.Family)
		if !ok {
			if s.logger != nil {
				s.logger.WithFields(map[string]any{"object": obj.ID, "family": obj.Family}).Warn("no probe for family")
			}
			if err := s.model.AddCollected(obj.ID, syschar.FlagNotCollected, nil); err != nil {
				return ovalerrors.NewProbeError("object query", obj.ID, err)
			}
			continue
		}

		items, flag, err := impl.Collect(ctx, obj)
		if err != nil {
			return ovalerrors.NewProbeError("object query", obj.ID, err)
		}

		if s.logger != nil {
			s.logger.WithFields(map[string]any{
				"object": obj.ID,
				"family": obj.Family,
				"flag":   string(flag),
				"items":  len(items),
			}).Debug("object collected")
		}

		if err := s.model.AddCollected(obj.ID, flag, items); err != nil {
			return ovalerrors.NewProbeError("object query", obj.ID, err)
		}
	}

	return nil
}

// Close releases the session. Further queries fail; closing twice is a
// no-op.
func (s *Session) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether the session has been released.
func (s *Session) Closed() bool {
	return s.closed
}
