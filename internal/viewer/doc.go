// Package viewer is the event routing and interaction core of tviewer.
//
// A Viewer owns a registry of visualization objects, a registry of keyboard
// listeners and a dispatch loop that pumps a Renderer. The wait family
// (WaitKey, WaitPointSelected, WaitPointsSelected and friends) suspends normal
// listener dispatch until a specific kind of input arrives or the window
// closes.
//
// A Viewer is confined to one goroutine. Run, Sleep, every Wait* call and
// every registry mutation must happen on the goroutine that drives the loop,
// usually from inside a listener callback. Renderers invoke the handlers
// installed through SetHandlers only from within SpinOnce, so the event
// snapshots and the wait state need no locking.
package viewer
