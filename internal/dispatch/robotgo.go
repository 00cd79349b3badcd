package dispatch

import (
	"fmt"
	"time"

	"github.com/go-vgo/robotgo"
)

// RobotgoInputter injects real OS input events via robotgo.
type RobotgoInputter struct{}

// NewRobotgoInputter returns the production Inputter.
func NewRobotgoInputter() *RobotgoInputter { return &RobotgoInputter{} }

func (r *RobotgoInputter) Move(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (r *RobotgoInputter) Click(x, y int, button string, double bool) error {
	if button != "left" && button != "right" && button != "center" {
		return fmt.Errorf("unknown mouse button: %q", button)
	}
	robotgo.Move(x, y)
	robotgo.Click(button, double)
	return nil
}

func (r *RobotgoInputter) Drag(fromX, fromY, toX, toY int, duration time.Duration) error {
	robotgo.Move(fromX, fromY)
	robotgo.MilliSleep(100)
	robotgo.DragSmooth(toX, toY)
	return nil
}

func (r *RobotgoInputter) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// KeyCombo presses a modifier combination: the last key is tapped while the
// preceding keys are held (e.g. ["ctrl", "c"]).
func (r *RobotgoInputter) KeyCombo(keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("empty key combo")
	}
	key := keys[len(keys)-1]
	modifiers := make([]interface{}, 0, len(keys)-1)
	for _, m := range keys[:len(keys)-1] {
		modifiers = append(modifiers, m)
	}
	return robotgo.KeyTap(key, modifiers...)
}

func (r *RobotgoInputter) Scroll(x, y, dx, dy int) error {
	robotgo.Move(x, y)
	robotgo.Scroll(dx, dy)
	return nil
}
