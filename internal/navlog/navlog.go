// Package navlog keeps the back/forward log of a browsing surface and
// reconciles navigation outcomes against traversal requests.
//
// The log never navigates by itself. Traversals are handed to a Navigator,
// which must later report exactly one of NavigationComplete or
// NavigationFailed for every navigation it performs, whether it was asked
// for by the log or started somewhere else.
package navlog

import (
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// ErrNilNavigator is returned by New when no navigator is supplied.
var ErrNilNavigator = errors.New("navlog: nil navigator")

// Navigator performs navigation on behalf of the log.
type Navigator[L any] interface {
	// Navigate starts navigating to loc. It may complete synchronously.
	Navigate(loc L)
	// Equal reports whether a and b refer to the same underlying resource.
	// It is called with the log locked and must not call back into it.
	Equal(a, b L) bool
}

// Direction selects a neighbouring log entry.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	default:
		return "unknown"
	}
}

// Change describes what a log update affected.
type Change struct {
	LocationsChanged     bool
	CanGoBackwardChanged bool
	CanGoForwardChanged  bool
}

// pending is an in-flight traversal started through the log.
type pending[L any] struct {
	location L
	index    int
}

// Log is a navigation log. It is safe for concurrent use.
type Log[L any] struct {
	mu        sync.Mutex
	nav       Navigator[L]
	locations []L
	current   int // -1 until the first navigation completes

	pend    pending[L]
	pendSet bool

	listeners map[int]func(Change)
	nextID    int

	logger *slog.Logger
}

// New creates an empty log driven by nav.
func New[L any](nav Navigator[L]) (*Log[L], error) {
	if nav == nil {
		return nil, ErrNilNavigator
	}
	return &Log[L]{
		nav:       nav,
		current:   -1,
		listeners: make(map[int]func(Change)),
	}, nil
}

// SetLogger enables debug logging of requests and reconciliations.
func (l *Log[L]) SetLogger(logger *slog.Logger) {
	l.mu.Lock()
	l.logger = logger
	l.mu.Unlock()
}

// OnChange registers fn to be called after every change to the log or the
// current position. The returned func unregisters it.
func (l *Log[L]) OnChange(fn func(Change)) (cancel func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// CanGoBackward reports whether an earlier entry exists.
func (l *Log[L]) CanGoBackward() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canBackward()
}

// CanGoForward reports whether a later entry exists.
func (l *Log[L]) CanGoForward() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.canForward()
}

// CurrentIndex returns the current position, or -1 when nothing has been
// visited yet.
func (l *Log[L]) CurrentIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Current returns the location at the current position.
func (l *Log[L]) Current() (L, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current < 0 {
		var zero L
		return zero, false
	}
	return l.locations[l.current], true
}

// Locations returns a copy of the log, oldest first.
func (l *Log[L]) Locations() []L {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]L, len(l.locations))
	copy(out, l.locations)
	return out
}

// Len returns the number of logged locations.
func (l *Log[L]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locations)
}

// Pending returns the traversal currently awaiting an outcome, if any.
func (l *Log[L]) Pending() (L, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.pendSet {
		var zero L
		return zero, -1, false
	}
	return l.pend.location, l.pend.index, true
}

// Navigate asks the navigator to move one entry in dir. It returns false,
// and does nothing, when there is no entry in that direction.
func (l *Log[L]) Navigate(dir Direction) bool {
	l.mu.Lock()
	var idx int
	switch {
	case dir == Backward && l.canBackward():
		idx = l.current - 1
	case dir == Forward && l.canForward():
		idx = l.current + 1
	default:
		l.mu.Unlock()
		return false
	}
	loc := l.request(idx)
	l.debug("traversal requested", "direction", dir.String(), "index", idx)
	l.mu.Unlock()

	l.nav.Navigate(loc)
	return true
}

// NavigateToIndex asks the navigator to move to the entry at index. It
// returns false for an out of range index and for the current index; the
// current entry is never re-navigated.
func (l *Log[L]) NavigateToIndex(index int) bool {
	l.mu.Lock()
	if index < 0 || index >= len(l.locations) || index == l.current {
		l.mu.Unlock()
		return false
	}
	loc := l.request(index)
	l.debug("traversal requested", "index", index)
	l.mu.Unlock()

	l.nav.Navigate(loc)
	return true
}

// NavigationComplete records that the navigator arrived at loc.
//
// If loc is the target of the pending traversal the current position moves
// to it. Otherwise the arrival is a new visit: entries after the current
// position are dropped and loc is appended.
func (l *Log[L]) NavigationComplete(loc L) {
	l.mu.Lock()
	oldBack, oldFwd := l.canBackward(), l.canForward()

	var ch Change
	if l.pendSet && l.nav.Equal(loc, l.pend.location) {
		l.current = l.pend.index
		l.debug("traversal completed", "index", l.current)
	} else {
		if l.pendSet {
			l.debug("traversal diverged", "wanted", l.pend.index)
		}
		l.visit(loc)
		ch.LocationsChanged = true
		l.debug("location appended", "index", l.current, "len", len(l.locations))
	}
	l.clearPending()

	ch.CanGoBackwardChanged = oldBack != l.canBackward()
	ch.CanGoForwardChanged = oldFwd != l.canForward()
	fns := l.snapshotListeners()
	l.mu.Unlock()

	notify(fns, ch)
}

// NavigationFailed records that the last navigation did not complete. The
// log and the current position are left as they were.
func (l *Log[L]) NavigationFailed() {
	l.mu.Lock()
	if l.pendSet {
		l.debug("navigation failed", "pending", true, "index", l.pend.index)
	} else {
		l.debug("navigation failed", "pending", false)
	}
	l.clearPending()
	l.mu.Unlock()
}

// Clear empties the log and forgets any pending traversal. Clearing an
// empty log is a no-op.
func (l *Log[L]) Clear() {
	l.mu.Lock()
	if len(l.locations) == 0 {
		l.mu.Unlock()
		return
	}
	oldBack, oldFwd := l.canBackward(), l.canForward()

	l.locations = nil
	l.current = -1
	// A traversal in flight points into the old log.
	l.clearPending()
	l.debug("log cleared")

	ch := Change{
		LocationsChanged:     true,
		CanGoBackwardChanged: oldBack != l.canBackward(),
		CanGoForwardChanged:  oldFwd != l.canForward(),
	}
	fns := l.snapshotListeners()
	l.mu.Unlock()

	notify(fns, ch)
}

func (l *Log[L]) canBackward() bool { return l.current > 0 }

func (l *Log[L]) canForward() bool { return l.current < len(l.locations)-1 }

func (l *Log[L]) request(index int) L {
	loc := l.locations[index]
	l.pend = pending[L]{location: loc, index: index}
	l.pendSet = true
	return loc
}

func (l *Log[L]) clearPending() {
	l.pend = pending[L]{}
	l.pendSet = false
}

// visit truncates forward entries and appends loc.
func (l *Log[L]) visit(loc L) {
	if l.current < len(l.locations)-1 {
		clear(l.locations[l.current+1:])
		l.locations = l.locations[:l.current+1]
	}
	l.locations = append(l.locations, loc)
	l.current = len(l.locations) - 1
}

func (l *Log[L]) snapshotListeners() []func(Change) {
	if len(l.listeners) == 0 {
		return nil
	}
	ids := slices.Sorted(maps.Keys(l.listeners))
	fns := make([]func(Change), len(ids))
	for i, id := range ids {
		fns[i] = l.listeners[id]
	}
	return fns
}

// debug must be called with mu held.
func (l *Log[L]) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

func notify(fns []func(Change), ch Change) {
	for _, fn := range fns {
		fn(ch)
	}
}
