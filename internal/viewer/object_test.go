package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowHideScenario(t *testing.T) {
	v := newTestViewer(newFakeRenderer())
	cloud := newFakeObject("cloud1")

	require.NoError(t, v.Add(cloud, false, false))
	assert.False(t, v.Visible("cloud1"))

	v.Show("cloud1")
	assert.True(t, v.Visible("cloud1"))

	v.HideAll()
	assert.False(t, v.Visible("cloud1"))
}

func TestAddDuplicateIsRejected(t *testing.T) {
	v := newTestViewer(newFakeRenderer())
	first := newFakeObject("cloud")
	second := newFakeObject("cloud")

	require.NoError(t, v.Add(first, false, false))
	err := v.Add(second, true, true)
	require.ErrorIs(t, err, ErrDuplicateObject)

	assert.Equal(t, []string{"cloud"}, v.Objects())
	assert.False(t, second.visible, "rejected object must not be shown")
	assert.Zero(t, second.updates, "rejected object must not be updated")

	v.Show("cloud")
	assert.True(t, first.visible)
	assert.False(t, second.visible)
}

func TestAddNilObjectIsRejected(t *testing.T) {
	v := newTestViewer(newFakeRenderer())

	require.ErrorIs(t, v.Add(nil, true, true), ErrNilObject)
	assert.Empty(t, v.Objects())
}

func TestAddUpdatesBeforeShowing(t *testing.T) {
	var calls []string
	v := newTestViewer(newFakeRenderer())
	o := newFakeObject("cloud")
	o.log = &calls

	require.NoError(t, v.Add(o, true, true))
	assert.Equal(t, []string{"update cloud", "show cloud"}, calls)
}

func TestAddForceSets(t *testing.T) {
	v := newTestViewer(newFakeRenderer(),
		WithForceShow("always", "both"),
		WithForceHide("never", "both"),
	)

	always := newFakeObject("always")
	never := newFakeObject("never")
	both := newFakeObject("both")
	plain := newFakeObject("plain")

	require.NoError(t, v.Add(always, false, false))
	require.NoError(t, v.Add(never, true, false))
	require.NoError(t, v.Add(both, true, false))
	require.NoError(t, v.Add(plain, true, false))

	assert.True(t, always.visible, "force-show overrides show=false")
	assert.False(t, never.visible, "force-hide overrides show=true")
	assert.False(t, both.visible, "force-hide wins over force-show")
	assert.True(t, plain.visible)
}

func TestAddThenRemoveKeepsVisibleSet(t *testing.T) {
	v := newTestViewer(newFakeRenderer())
	a := newFakeObject("a")
	require.NoError(t, v.Add(a, true, false))

	visibleNames := func() []string {
		var out []string
		for _, n := range v.Objects() {
			if v.Visible(n) {
				out = append(out, n)
			}
		}
		return out
	}
	before := visibleNames()

	b := newFakeObject("b")
	require.NoError(t, v.Add(b, true, false))
	v.Remove("b")

	assert.Equal(t, before, visibleNames())
	assert.False(t, b.visible, "remove hides the object")
	assert.Equal(t, 1, b.hides)
}

func TestUnknownNamesAreNoops(t *testing.T) {
	v := newTestViewer(newFakeRenderer())
	o := newFakeObject("cloud")
	require.NoError(t, v.Add(o, false, false))

	v.Show("clod")
	v.Hide("missing")
	v.Update("missing")
	v.Remove("missing")
	v.RemoveListener("missing")

	assert.False(t, o.visible)
	assert.Zero(t, o.updates)
	assert.Equal(t, []string{"cloud"}, v.Objects())
}

func TestGlobalOperationsFollowRegistrationOrder(t *testing.T) {
	var calls []string
	v := newTestViewer(newFakeRenderer())
	for _, n := range []string{"C", "A", "B"} {
		o := newFakeObject(n)
		o.log = &calls
		require.NoError(t, v.Add(o, false, false))
	}

	v.ShowAll()
	for _, n := range v.Objects() {
		assert.True(t, v.Visible(n), n)
	}
	v.UpdateAll()
	v.HideAll()
	for _, n := range v.Objects() {
		assert.False(t, v.Visible(n), n)
	}

	assert.Equal(t, []string{
		"show C", "show A", "show B",
		"update C", "update A", "update B",
		"hide C", "hide A", "hide B",
	}, calls)
}

func TestClosestName(t *testing.T) {
	assert.Equal(t, "cloud1", closest("clod1", []string{"mesh", "cloud1", "overlay"}))
	assert.Equal(t, "", closest("x", nil))
}

func TestNewRejectsNilRenderer(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}
