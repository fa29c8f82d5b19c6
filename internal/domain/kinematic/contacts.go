package kinematic

// Contact describes a touch between a body and another collider.
type Contact struct {
	Other            Collider
	OtherEntity      EntityID
	RelativeVelocity Vec
	Point            Vec
	Normal           Vec
}

// Mirror returns the same contact as seen from the other side.
func (c Contact) Mirror(self Collider) Contact {
	return Contact{
		Other:            self,
		OtherEntity:      self.Entity,
		RelativeVelocity: c.RelativeVelocity.Neg(),
		Point:            c.Point,
		Normal:           c.Normal.Neg(),
	}
}

// ContactListener receives synthesized contact transitions.
type ContactListener interface {
	OnContactEnter(c Contact)
	OnContactStay(c Contact)
	OnContactExit(c Contact)
}

// ContactRouter finds the listeners attached to an entity.
type ContactRouter interface {
	ListenersOf(id EntityID) []ContactListener
}

// ContactTracker turns per-step hit sets into enter/stay/exit events.
//
// Hits are recorded into the current set while a step resolves. The set is
// compared with the previous one only when Flush runs, after every body has
// finished stepping; the two sets then swap roles.
type ContactTracker struct {
	current  contactSet
	previous contactSet
	pending  bool
}

// contactSet keeps insertion order so dispatch is deterministic.
type contactSet struct {
	byCollider map[Collider]Contact
	order      []Collider
}

func newContactSet() contactSet {
	return contactSet{byCollider: make(map[Collider]Contact)}
}

func (s *contactSet) has(c Collider) bool {
	_, ok := s.byCollider[c]
	return ok
}

func (s *contactSet) add(c Contact) {
	if s.has(c.Other) {
		return
	}
	s.byCollider[c.Other] = c
	s.order = append(s.order, c.Other)
}

func (s *contactSet) reset() {
	clear(s.byCollider)
	s.order = s.order[:0]
}

// NewContactTracker creates an empty tracker
func NewContactTracker() *ContactTracker {
	return &ContactTracker{
		current:  newContactSet(),
		previous: newContactSet(),
	}
}

// Record adds a contact to the set being built. The first contact per
// collider wins within a step.
func (t *ContactTracker) Record(c Contact) {
	t.current.add(c)
}

// Seal marks the current set as complete and waiting for Flush.
func (t *ContactTracker) Seal() {
	t.pending = true
}

// Pending reports whether a sealed set has not been flushed yet.
func (t *ContactTracker) Pending() bool {
	return t.pending
}

// Touching reports whether other was part of the last flushed set.
func (t *ContactTracker) Touching(other Collider) bool {
	return t.previous.has(other)
}

// Last returns the last flushed set in recording order.
func (t *ContactTracker) Last() []Contact {
	out := make([]Contact, 0, len(t.previous.order))
	for _, key := range t.previous.order {
		out = append(out, t.previous.byCollider[key])
	}
	return out
}

// Len returns the size of the last flushed set.
func (t *ContactTracker) Len() int {
	return len(t.previous.order)
}

// Flush diffs the sealed set against the previous one and dispatches the
// transitions to local listeners and, mirrored, to the other entity's
// listeners found through router. It does nothing unless a set is pending.
func (t *ContactTracker) Flush(self Collider, local []ContactListener, router ContactRouter) {
	if !t.pending {
		return
	}
	t.pending = false

	for _, key := range t.current.order {
		c := t.current.byCollider[key]
		existed := t.previous.has(key)
		remote := remoteListeners(router, c.OtherEntity, self.Entity)
		mirrored := c.Mirror(self)
		if !existed {
			for _, l := range local {
				l.OnContactEnter(c)
			}
			for _, l := range remote {
				l.OnContactEnter(mirrored)
			}
		}
		for _, l := range local {
			l.OnContactStay(c)
		}
		for _, l := range remote {
			l.OnContactStay(mirrored)
		}
	}

	for _, key := range t.previous.order {
		if t.current.has(key) {
			continue
		}
		c := t.previous.byCollider[key]
		for _, l := range local {
			l.OnContactExit(c)
		}
		for _, l := range remoteListeners(router, c.OtherEntity, self.Entity) {
			l.OnContactExit(c.Mirror(self))
		}
	}

	t.previous, t.current = t.current, t.previous
	t.current.reset()
}

// Reset forgets both sets without dispatching anything.
func (t *ContactTracker) Reset() {
	t.current.reset()
	t.previous.reset()
	t.pending = false
}

func remoteListeners(router ContactRouter, other, self EntityID) []ContactListener {
	if router == nil || other == 0 || other == self {
		return nil
	}
	return router.ListenersOf(other)
}

// ContactFuncs adapts plain functions to ContactListener. Nil fields are
// skipped.
type ContactFuncs struct {
	Enter func(Contact)
	Stay  func(Contact)
	Exit  func(Contact)
}

func (f ContactFuncs) OnContactEnter(c Contact) {
	if f.Enter != nil {
		f.Enter(c)
	}
}

func (f ContactFuncs) OnContactStay(c Contact) {
	if f.Stay != nil {
		f.Stay(c)
	}
}

func (f ContactFuncs) OnContactExit(c Contact) {
	if f.Exit != nil {
		f.Exit(c)
	}
}
