package kinematic

// windowEpsilon absorbs the drift of repeatedly subtracting a fixed dt.
const windowEpsilon = 1e-9

// Window is a timed boolean advanced once per fixed step.
//
// Expiry is reported by Advance, so a cancelled window can never fire late.
// The zero value is closed.
type Window struct {
	active    bool
	duration  float64
	remaining float64
}

// Open (re)starts the window for d seconds.
func (w *Window) Open(d float64) {
	if d < 0 {
		d = 0
	}
	w.active = true
	w.duration = d
	w.remaining = d
}

// Cancel closes the window without expiring it.
func (w *Window) Cancel() {
	w.active = false
	w.remaining = 0
}

// Active reports whether the window is open.
func (w Window) Active() bool {
	return w.active
}

// Advance consumes dt and returns true on the step the window expires.
func (w *Window) Advance(dt float64) bool {
	if !w.active {
		return false
	}
	w.remaining -= dt
	if w.remaining <= windowEpsilon {
		w.active = false
		w.remaining = 0
		return true
	}
	return false
}

// Duration returns the length the window was last opened with
func (w Window) Duration() float64 {
	return w.duration
}

// Remaining returns the time left, zero when closed
func (w Window) Remaining() float64 {
	return w.remaining
}

// Elapsed returns the time spent since the last Open.
func (w Window) Elapsed() float64 {
	if !w.active {
		return w.duration
	}
	return w.duration - w.remaining
}

// Progress returns Elapsed as a fraction of Duration.
func (w Window) Progress() float64 {
	if w.duration <= 0 {
		return 1
	}
	return w.Elapsed() / w.duration
}
