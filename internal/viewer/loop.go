package viewer

import (
	"time"

	"go.uber.org/zap"
)

// Run pumps the renderer until its window is closed.
func (v *Viewer) Run() {
	v.log.Info("viewer running", zap.Int("objects", len(v.objects.items)), zap.Int("listeners", len(v.listeners.items)))
	for !v.renderer.Closed() {
		v.renderer.SpinOnce(v.tick)
	}
	v.log.Info("window closed")
}

// Sleep pumps the renderer until d has elapsed, dispatching events as Run
// does. Renderers that return early on events are spun again until the
// deadline passes. It returns early when the window is closed.
func (v *Viewer) Sleep(d time.Duration) {
	now := time.Now
	if c, ok := v.renderer.(Clock); ok {
		now = c.Now
	}
	deadline := now().Add(d)
	for !v.renderer.Closed() {
		left := deadline.Sub(now())
		if left <= 0 {
			return
		}
		v.renderer.SpinOnce(min(v.tick, left))
	}
}

func (v *Viewer) keyboardEvent(ev KeyEvent) {
	ev.Key = NormalizeKey(ev.Key)
	if ev.Key == "" {
		return
	}
	v.lastKey.put(ev)
	if v.state != waitNone {
		// The active wait consumes the snapshot.
		return
	}
	v.lastKey.take()
	if ev.Key == v.keys.Help {
		v.printHelp()
		return
	}
	v.dispatch(ev)
}

func (v *Viewer) pickEvent(ev PickEvent) {
	v.lastPick.put(ev)
	if v.state != waitNone {
		return
	}
	v.lastPick.clear()
	v.log.Debug("point pick outside of a wait ignored", zap.String("object", ev.Object), zap.Int("index", ev.Index))
}

// dispatch routes a key press to objects with a key of their own, ungated,
// and then to every listener whose dependency gate is open.
func (v *Viewer) dispatch(ev KeyEvent) {
	for _, o := range append([]Object(nil), v.objects.items...) {
		if l, ok := o.(Listener); ok {
			l.HandleKey(ev)
		}
	}
	n := v.listeners.dispatch(ev, v.objects.anyVisible)
	v.log.Debug("key dispatched", zap.String("key", ev.Key), zap.Int("handled", n))
}
