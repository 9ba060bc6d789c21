package viewer

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// wait runs the blocking protocol shared by every Wait* method: enter the
// wait state, drop stale snapshots, pump the renderer and feed each tick to
// step until it reports completion or the window closes.
func (v *Viewer) wait(kind waitKind, step func() (bool, error)) error {
	if v.state != waitNone {
		v.log.Warn("wait rejected", zap.Stringer("requested", kind), zap.Stringer("active", v.state))
		return ErrWaitInProgress
	}
	v.state = kind
	defer func() { v.state = waitNone }()
	v.lastKey.clear()
	v.lastPick.clear()

	v.log.Debug("wait started", zap.Stringer("kind", kind))
	for {
		if v.renderer.Closed() {
			v.log.Debug("wait aborted", zap.Stringer("kind", kind))
			return ErrWindowClosed
		}
		v.renderer.SpinOnce(v.tick)
		done, err := step()
		if err != nil {
			return err
		}
		if done {
			v.log.Debug("wait satisfied", zap.Stringer("kind", kind))
			return nil
		}
	}
}

// waitKey waits for a key in keys, or any key when keys is empty. The help
// key is reserved and never satisfies a key wait.
func (v *Viewer) waitKey(keys []string) (string, error) {
	anyKey := len(keys) == 0
	set := slices.DeleteFunc(normalizeKeys(keys), func(k string) bool { return k == v.keys.Help })
	if anyKey {
		v.printf("Press any key to continue\n")
	} else {
		v.printf("Press one of [%s] to continue\n", strings.Join(set, ", "))
	}

	var pressed string
	err := v.wait(waitKey, func() (bool, error) {
		ev, ok := v.lastKey.take()
		if !ok || ev.Key == v.keys.Help {
			return false, nil
		}
		if anyKey || slices.Contains(set, ev.Key) {
			pressed = ev.Key
			return true, nil
		}
		return false, nil
	})
	return pressed, err
}

// WaitKeyPressed blocks until any key is pressed.
func (v *Viewer) WaitKeyPressed() error {
	_, err := v.waitKey(nil)
	return err
}

// WaitKey blocks until any key is pressed and returns it.
func (v *Viewer) WaitKey() (string, error) {
	return v.waitKey(nil)
}

// WaitKeyPressedIn blocks until one of keys is pressed.
func (v *Viewer) WaitKeyPressedIn(keys ...string) error {
	_, err := v.waitKey(keys)
	return err
}

// WaitKeyIn blocks until one of keys is pressed and returns it.
func (v *Viewer) WaitKeyIn(keys ...string) (string, error) {
	return v.waitKey(keys)
}

func (v *Viewer) waitPick(accept func(PickEvent) bool) error {
	return v.wait(waitPoint, func() (bool, error) {
		ev, ok := v.lastPick.take()
		if !ok {
			return false, nil
		}
		return accept(ev), nil
	})
}

// WaitPointSelected blocks until a point is picked.
func (v *Viewer) WaitPointSelected() (PickedPoint, error) {
	v.printf("Pick a point\n")
	var p PickedPoint
	err := v.waitPick(func(ev PickEvent) bool {
		p = PickedPoint(ev)
		return true
	})
	return p, err
}

// WaitPointIndexSelected blocks until a point is picked and returns its index.
func (v *Viewer) WaitPointIndexSelected() (int, error) {
	p, err := v.WaitPointSelected()
	return p.Index, err
}

// WaitPointColorSelected blocks until a point whose object can report colors
// is picked and returns the color of that point.
func (v *Viewer) WaitPointColorSelected() (color.RGBA, error) {
	v.printf("Pick a point to query its color\n")
	var c color.RGBA
	err := v.waitPick(func(ev PickEvent) bool {
		o, ok := v.objects.get(ev.Object)
		if !ok {
			return false
		}
		pc, ok := o.(PointColorer)
		if !ok {
			v.printf("%s has no color information, pick another point\n", ev.Object)
			return false
		}
		if c, ok = pc.PointColor(ev.Index); !ok {
			v.printf("%s has no point %d\n", ev.Object, ev.Index)
			return false
		}
		return true
	})
	return c, err
}

// selectionBuilder accumulates picks into label groups.
type selectionBuilder struct {
	sel            Selection
	label          uint32
	seen           map[int]bool
	skipDuplicates bool
}

func newSelectionBuilder(skipDuplicates bool) *selectionBuilder {
	return &selectionBuilder{
		sel:            Selection{Indices: []PointIndices{{}}},
		seen:           make(map[int]bool),
		skipDuplicates: skipDuplicates,
	}
}

// add appends ev to the current group and reports whether it was taken.
func (b *selectionBuilder) add(ev PickEvent) bool {
	if b.sel.Object == "" {
		b.sel.Object = ev.Object
	}
	if ev.Object != b.sel.Object {
		return false
	}
	if b.skipDuplicates && b.seen[ev.Index] {
		return false
	}
	b.seen[ev.Index] = true
	b.sel.Cloud = append(b.sel.Cloud, PointXYZL{X: ev.X, Y: ev.Y, Z: ev.Z, Label: b.label})
	cur := &b.sel.Indices[len(b.sel.Indices)-1]
	cur.Indices = append(cur.Indices, ev.Index)
	return true
}

// next starts a new label group unless the current one is empty.
func (b *selectionBuilder) next() bool {
	if len(b.sel.Indices[len(b.sel.Indices)-1].Indices) == 0 {
		return false
	}
	b.label++
	b.sel.Indices = append(b.sel.Indices, PointIndices{})
	return true
}

func (b *selectionBuilder) result() Selection {
	out := b.sel
	if n := len(out.Indices); len(out.Indices[n-1].Indices) == 0 {
		out.Indices = out.Indices[:n-1]
	}
	return out
}

// WaitPointsSelected accumulates picked points until the done key is pressed.
// The next-label key starts a new label group and the cancel key abandons
// the selection. With skipDuplicates a point index is taken at most once.
func (v *Viewer) WaitPointsSelected(skipDuplicates bool) (Selection, error) {
	v.printf("Pick points. %s: new label, %s: finish, %s: cancel\n",
		v.keys.NextLabel, v.keys.Done, v.keys.Cancel)

	b := newSelectionBuilder(skipDuplicates)
	err := v.wait(waitPoints, func() (bool, error) {
		if ev, ok := v.lastPick.take(); ok {
			if b.add(ev) {
				v.printf("  %s[%d] label %d\n", ev.Object, ev.Index, b.label)
			} else {
				v.log.Debug("pick skipped", zap.String("object", ev.Object), zap.Int("index", ev.Index))
			}
		}
		ev, ok := v.lastKey.take()
		if !ok {
			return false, nil
		}
		switch ev.Key {
		case v.keys.Done:
			return true, nil
		case v.keys.Cancel:
			return false, ErrSelectionCanceled
		case v.keys.NextLabel:
			if b.next() {
				v.printf("  label %d\n", b.label)
			}
		}
		return false, nil
	})
	if err != nil {
		return Selection{}, err
	}
	sel := b.result()
	v.log.Info("points selected", zap.String("object", sel.Object), zap.Int("points", sel.Len()), zap.Int("labels", len(sel.Indices)))
	return sel, nil
}

// WaitLabeledPointsSelected is WaitPointsSelected reporting only the labeled points.
func (v *Viewer) WaitLabeledPointsSelected(skipDuplicates bool) ([]PointXYZL, error) {
	sel, err := v.WaitPointsSelected(skipDuplicates)
	return sel.Cloud, err
}

// WaitPointIndicesSelected is WaitPointsSelected reporting only the index groups.
func (v *Viewer) WaitPointIndicesSelected(skipDuplicates bool) ([]PointIndices, error) {
	sel, err := v.WaitPointsSelected(skipDuplicates)
	return sel.Indices, err
}

// AskYesNo prints question and blocks until the yes or no key is pressed.
// With noWithAnyKey every key other than yes counts as no.
func (v *Viewer) AskYesNo(question string, noWithAnyKey bool) (bool, error) {
	if noWithAnyKey {
		v.printf("%s [%s/any key]\n", question, v.keys.Yes)
	} else {
		v.printf("%s [%s/%s]\n", question, v.keys.Yes, v.keys.No)
	}

	var answer bool
	err := v.wait(waitYesNo, func() (bool, error) {
		ev, ok := v.lastKey.take()
		if !ok || ev.Key == v.keys.Help {
			return false, nil
		}
		switch {
		case ev.Key == v.keys.Yes:
			answer = true
			return true, nil
		case ev.Key == v.keys.No, noWithAnyKey:
			return true, nil
		}
		return false, nil
	})
	return answer, err
}

func (v *Viewer) printf(format string, args ...any) {
	fmt.Fprintf(v.console, format, args...)
}
