// Package dispatch executes canonical action descriptors as synthetic mouse
// and keyboard events, with a local throttle and an in-memory action history.
package dispatch

import (
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/dalijon-byte/LLM-ComputerUse/internal/config"
	"github.com/dalijon-byte/LLM-ComputerUse/internal/model"
)

// Inputter simulates mouse and keyboard input. All coordinates are absolute
// screen pixels in the coordinate space of the most recent full-screen
// capture.
type Inputter interface {
	Move(x, y int) error
	Click(x, y int, button string, double bool) error
	Drag(fromX, fromY, toX, toY int, duration time.Duration) error
	TypeText(text string) error
	KeyCombo(keys []string) error
	Scroll(x, y, dx, dy int) error
}

// Resolver maps an element name to its current on-screen center, typically
// by template matching against a fresh capture. A false result means the
// target is not currently visible.
type Resolver func(name string) (image.Point, bool)

// Record is one entry of the action history log.
type Record struct {
	Kind   model.ActionKind `json:"kind"             yaml:"kind"`
	Target string           `json:"target,omitempty" yaml:"target,omitempty"`
	X      int              `json:"x"                yaml:"x"`
	Y      int              `json:"y"                yaml:"y"`
	Time   time.Time        `json:"time"             yaml:"time"`
}

// Dispatcher executes ActionDescriptors through an Inputter.
type Dispatcher struct {
	input    Inputter
	throttle *throttle
	dragDur  time.Duration
	history  []Record
	logger   *zap.Logger
}

// New creates a Dispatcher. Pass NewRobotgoInputter() for real input
// injection or a fake for tests.
func New(input Inputter, cfg config.DispatchConfig, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	dragDur := cfg.DragDuration
	if dragDur <= 0 {
		dragDur = time.Second
	}
	return &Dispatcher{
		input:    input,
		throttle: newThrottle(cfg.MinInterval, cfg.WindowCap, cfg.Cooldown),
		dragDur:  dragDur,
		logger:   logger.Named("dispatch"),
	}
}

// History returns a copy of the dispatched-action log.
func (d *Dispatcher) History() []Record {
	out := make([]Record, len(d.history))
	copy(out, d.history)
	return out
}

// Execute runs one action descriptor. Element-name targets are resolved to
// screen coordinates via resolve; box-call actions carry their own absolute
// boxes and never consult the resolver. Dispatcher failures are returned to
// the caller, which reports them and continues the loop.
func (d *Dispatcher) Execute(desc model.ActionDescriptor, resolve Resolver) error {
	start, err := d.startPoint(desc, resolve)
	if err != nil {
		return err
	}

	d.throttle.wait()
	d.record(desc, start)

	switch desc.Kind {
	case model.ActionClick:
		return d.input.Click(start.X, start.Y, "left", false)

	case model.ActionDoubleClick:
		return d.input.Click(start.X, start.Y, "left", true)

	case model.ActionRightClick:
		return d.input.Click(start.X, start.Y, "right", false)

	case model.ActionDrag:
		end, err := d.endPoint(desc, resolve)
		if err != nil {
			return err
		}
		return d.input.Drag(start.X, start.Y, end.X, end.Y, d.dragDur)

	case model.ActionType:
		// Click first to focus when a target is known.
		if desc.Target != "" || desc.Params.StartBox != nil {
			if err := d.input.Click(start.X, start.Y, "left", false); err != nil {
				return err
			}
		}
		return d.input.TypeText(desc.Params.Content)

	case model.ActionHotkey:
		if len(desc.Params.Keys) == 0 {
			return fmt.Errorf("hotkey action without keys")
		}
		return d.input.KeyCombo(desc.Params.Keys)

	case model.ActionScroll:
		dx, dy, err := scrollTicks(desc.Params.Direction, desc.Params.Clicks)
		if err != nil {
			return err
		}
		return d.input.Scroll(start.X, start.Y, dx, dy)

	case model.ActionWait:
		secs := desc.Params.Seconds
		if secs <= 0 {
			secs = 5
		}
		time.Sleep(time.Duration(secs) * time.Second)
		return nil

	case model.ActionFinished, model.ActionCallUser:
		// Nothing to inject; the CLI surface handles user interaction.
		return nil

	default:
		return fmt.Errorf("unsupported action kind: %q", desc.Kind)
	}
}

// startPoint resolves the primary coordinate of the action: the box-call
// start box when present, otherwise the named target via the resolver.
// Actions without a spatial component resolve to the zero point.
func (d *Dispatcher) startPoint(desc model.ActionDescriptor, resolve Resolver) (image.Point, error) {
	switch desc.Kind {
	case model.ActionHotkey, model.ActionWait, model.ActionFinished, model.ActionCallUser:
		return image.Point{}, nil
	}
	if desc.Params.StartBox != nil {
		return desc.Params.StartBox.Center(), nil
	}
	if desc.Target != "" {
		if resolve == nil {
			return image.Point{}, fmt.Errorf("no resolver for target %q", desc.Target)
		}
		if pt, ok := resolve(desc.Target); ok {
			return pt, nil
		}
		return image.Point{}, fmt.Errorf("target %q not currently visible", desc.Target)
	}
	if desc.Kind == model.ActionType {
		// Bare type actions go to whatever currently has focus.
		return image.Point{}, nil
	}
	return image.Point{}, fmt.Errorf("action %q has no target element or bounding box", desc.Kind)
}

// endPoint resolves the drag destination.
func (d *Dispatcher) endPoint(desc model.ActionDescriptor, resolve Resolver) (image.Point, error) {
	if desc.Params.EndBox != nil {
		return desc.Params.EndBox.Center(), nil
	}
	if desc.Params.EndTarget != "" {
		if resolve == nil {
			return image.Point{}, fmt.Errorf("no resolver for end target %q", desc.Params.EndTarget)
		}
		if pt, ok := resolve(desc.Params.EndTarget); ok {
			return pt, nil
		}
		return image.Point{}, fmt.Errorf("end target %q not currently visible", desc.Params.EndTarget)
	}
	return image.Point{}, fmt.Errorf("drag action without end target or end box")
}

func (d *Dispatcher) record(desc model.ActionDescriptor, pt image.Point) {
	rec := Record{
		Kind:   desc.Kind,
		Target: desc.Target,
		X:      pt.X,
		Y:      pt.Y,
		Time:   time.Now(),
	}
	d.history = append(d.history, rec)
	d.logger.Info("dispatching action",
		zap.String("kind", string(desc.Kind)),
		zap.String("target", desc.Target),
		zap.Int("x", pt.X),
		zap.Int("y", pt.Y))
}

// scrollTicks converts a direction plus click count into signed ticks along
// the vertical or horizontal axis.
func scrollTicks(direction string, clicks int) (dx, dy int, err error) {
	if clicks <= 0 {
		clicks = 3
	}
	switch direction {
	case "down", "":
		return 0, -clicks, nil
	case "up":
		return 0, clicks, nil
	case "left":
		return -clicks, 0, nil
	case "right":
		return clicks, 0, nil
	default:
		return 0, 0, fmt.Errorf("unknown scroll direction: %q", direction)
	}
}
