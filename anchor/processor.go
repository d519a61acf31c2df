package anchor

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/arplane/debugconsole"
	"go.viam.com/arplane/logging"
	"go.viam.com/arplane/spatialmath"
)

// DefaultTimestampFormat prints hours, minutes, seconds and milliseconds.
const DefaultTimestampFormat = "15:04:05.000"

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the clock debug lines are timestamped with.
func WithClock(clk clock.Clock) Option {
	return func(p *Processor) {
		p.clock = clk
	}
}

// WithTimestampFormat sets the time layout used in debug lines.
func WithTimestampFormat(layout string) Option {
	return func(p *Processor) {
		p.timestampFormat = layout
	}
}

// WithDescribePlanes makes the processor log each plane's description at debug level.
func WithDescribePlanes(describe bool) Option {
	return func(p *Processor) {
		p.describePlanes = describe
	}
}

// WithHistory records every solved equation in history.
func WithHistory(history *PlaneHistory) Option {
	return func(p *Processor) {
		p.history = history
	}
}

// Processor turns anchor events into plane equations and debug lines. It keeps no state between
// events apart from an optional PlaneHistory, so it may be shared by concurrent callers as long
// as its sink may be.
type Processor struct {
	sink   debugconsole.Sink
	logger logging.Logger

	clock           clock.Clock
	timestampFormat string
	describePlanes  bool
	history         *PlaneHistory
}

// NewProcessor returns a Processor reporting to sink.
func NewProcessor(sink debugconsole.Sink, logger logging.Logger, opts ...Option) *Processor {
	p := &Processor{
		sink:            sink,
		logger:          logger,
		clock:           clock.New(),
		timestampFormat: DefaultTimestampFormat,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleAnchors reports an added or updated batch of anchors. A header line counting every
// anchor is always sent. Then, if a frame is current, each plane anchor is solved against the
// frame's camera and its equation is sent. Other anchor types are ignored. The emitted equations
// are returned in anchor order.
func (p *Processor) HandleAnchors(kind EventKind, anchors []Anchor, frame *Frame) []spatialmath.PlaneEquation {
	timestamp := p.clock.Now().Format(p.timestampFormat)
	p.send(fmt.Sprintf("[%s] %s %s triggered with %d anchors", timestamp, kind.Marker(), kind, len(anchors)))

	if frame == nil {
		p.logger.Debugw("no current frame, skipping plane equations", "event", kind.String())
		return nil
	}

	planes := lo.FilterMap(anchors, func(a Anchor, _ int) (*PlaneAnchor, bool) {
		plane, ok := a.(*PlaneAnchor)
		return plane, ok && plane != nil
	})

	equations := make([]spatialmath.PlaneEquation, 0, len(planes))
	for _, plane := range planes {
		if p.describePlanes {
			p.logger.Debugw(fmt.Sprintf("%s plane %s", kind, plane.ID()), "description", plane.Describe())
		}

		eq, err := spatialmath.SolvePlaneEquation(plane.Transform(), frame.Camera)
		if err != nil {
			p.logger.Debugw("skipping plane", "anchor", plane.ID().String(), "error", errors.Wrap(err, "solving plane equation"))
			continue
		}
		equations = append(equations, eq)
		if p.history != nil {
			p.history.Record(plane.ID(), eq)
		}
		p.send(fmt.Sprintf("[%s] 📐 Plane equation (%s): %s", timestamp, kind, eq))
	}
	return equations
}

func (p *Processor) send(message string) {
	p.logger.Info(message)
	p.sink.SendDebug(message)
}
