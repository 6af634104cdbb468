// Package session owns the state of one packing task: the container, the
// placed boxes, the ID sequence and the color palette.
//
// A [Session] is the only way to mutate a task. Every operation either
// succeeds completely or leaves the session untouched:
//
//   - TryPlace admits a box only if it is inside the container and clear of
//     every other box (see package placement).
//   - Resize commits a new container only if every placed box still fits;
//     otherwise it returns an [errors.ItemsExceedBoundsError] naming the
//     boxes that would be cut off. Boxes never move.
//   - Stratify recomputes display layers on demand (see package stratify).
//
// # Usage
//
//	sess, err := session.New(session.Options{Seed: 42})
//	if err != nil {
//	    return err
//	}
//	box, err := sess.TryPlace(placement.Candidate{
//	    Position: geom.Vec3{},
//	    Size:     geom.Size{Width: 2, Height: 2, Depth: 2},
//	})
//	if errors.Is(err, errors.ErrCodeOverlap) {
//	    // Handle collision
//	}
//
// A Session is not safe for concurrent use. Hosts that share sessions
// between goroutines serialize access per session; [Store] does this for
// the HTTP server.
//
// [errors.ItemsExceedBoundsError]: github.com/L1TangDingZhen/BOX-P/pkg/errors.ItemsExceedBoundsError
package session

import (
	"io"
	"iter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/L1TangDingZhen/BOX-P/pkg/errors"
	"github.com/L1TangDingZhen/BOX-P/pkg/geom"
	"github.com/L1TangDingZhen/BOX-P/pkg/observability"
	"github.com/L1TangDingZhen/BOX-P/pkg/placement"
	"github.com/L1TangDingZhen/BOX-P/pkg/spatial"
	"github.com/L1TangDingZhen/BOX-P/pkg/stratify"
)

// Options configures a new Session.
type Options struct {
	// Container is the initial container. The zero value means
	// geom.DefaultContainer().
	Container geom.Container

	// Seed seeds the color palette.
	Seed uint64

	// Layers is used by Stratify.
	Layers stratify.Options

	// Logger receives debug records for placements, rejections and
	// resizes. Nil discards them.
	Logger *log.Logger
}

// Session is the state of one packing task.
type Session struct {
	container geom.Container
	index     *spatial.Index
	validator *placement.Validator
	layers    stratify.Options
	logger    *log.Logger
}

// New creates an empty session. It returns INVALID_DIMENSION if the
// container is invalid.
func New(opts Options) (*Session, error) {
	container := opts.Container
	if container == (geom.Container{}) {
		container = geom.DefaultContainer()
	}
	if err := container.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	index := spatial.New()
	return &Session{
		container: container,
		index:     index,
		validator: placement.NewValidator(index, placement.Options{Seed: opts.Seed}),
		layers:    opts.Layers,
		logger:    logger,
	}, nil
}

// Container returns the current container.
func (s *Session) Container() geom.Container { return s.container }

// Len returns the number of placed boxes.
func (s *Session) Len() int { return s.index.Len() }

// Box returns the placed box with the given ID.
func (s *Session) Box(id string) (spatial.Box, bool) { return s.index.Get(id) }

// All returns the placed boxes in insertion order. See [spatial.Index.All].
func (s *Session) All() iter.Seq[spatial.Box] { return s.index.All() }

// Boxes returns a copy of the placed boxes in insertion order.
func (s *Session) Boxes() []spatial.Box { return s.index.Boxes() }

// NextID returns the ID the next accepted box will receive.
func (s *Session) NextID() string { return s.validator.NextID() }

// Check reports whether c could be placed right now, without placing it.
func (s *Session) Check(c placement.Candidate) error {
	return s.validator.Check(c, s.container)
}

// TryPlace validates c against the container and the placed boxes and
// places it on success. A rejected candidate changes nothing.
func (s *Session) TryPlace(c placement.Candidate) (spatial.Box, error) {
	b, err := s.validator.TryPlace(c, s.container)
	observability.Placement().OnPlace(b.ID, err)
	if err != nil {
		s.logger.Debug("placement rejected",
			"code", errors.GetCode(err), "pos", c.Position, "size", c.Size)
		return spatial.Box{}, err
	}
	s.logger.Debug("placed", "id", b.ID, "pos", b.Position, "size", b.Size, "color", b.Color)
	return b, nil
}

// Remove deletes a placed box. Its ID and color are not handed out again.
func (s *Session) Remove(id string) error {
	if !s.index.Remove(id) {
		return errors.New(errors.ErrCodeNotFound, "no box with id %q", id)
	}
	observability.Placement().OnRemove(id)
	s.logger.Debug("removed", "id", id)
	return nil
}

// Offenders returns the IDs of placed boxes that would not fit in c, in
// insertion order.
func (s *Session) Offenders(c geom.Container) []string {
	var ids []string
	for b := range s.index.All() {
		if !c.Contains(b.AABB()) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// Resize replaces the container. It is all-or-nothing: if any placed box
// would leave the new container, the current container is kept and an
// *errors.ItemsExceedBoundsError listing those boxes is returned.
func (s *Session) Resize(c geom.Container) (err error) {
	defer func() { observability.Placement().OnResize(err) }()

	if err := c.Validate(); err != nil {
		return err
	}
	if ids := s.Offenders(c); len(ids) > 0 {
		s.logger.Debug("resize rejected", "to", c, "offenders", len(ids))
		return &errors.ItemsExceedBoundsError{IDs: ids}
	}
	s.logger.Debug("resized", "from", s.container, "to", c)
	s.container = c
	return nil
}

// Layers returns the layering options used by Stratify.
func (s *Session) Layers() stratify.Options { return s.layers }

// SetLayers changes the layering options used by Stratify.
func (s *Session) SetLayers(opts stratify.Options) { s.layers = opts }

// Stratify groups the placed boxes into display layers using the
// session's layering options.
func (s *Session) Stratify() []stratify.Layer {
	return s.StratifyWith(s.layers)
}

// StratifyWith groups the placed boxes into display layers using opts
// instead of the session's options.
func (s *Session) StratifyWith(opts stratify.Options) []stratify.Layer {
	start := time.Now()
	layers := stratify.Stratify(s.index.Boxes(), opts)
	observability.Placement().OnStratify(s.index.Len(), len(layers), time.Since(start))
	return layers
}

// Utilization returns the fraction of the container volume occupied by
// boxes, between 0 and 1.
func (s *Session) Utilization() float64 {
	var used float64
	for b := range s.index.All() {
		used += b.Size.Volume()
	}
	return used / s.container.Volume()
}

// Walkthrough returns a cursor over the placed boxes in placement order.
func (s *Session) Walkthrough() *Walkthrough {
	return NewWalkthrough(s.index.Boxes())
}
