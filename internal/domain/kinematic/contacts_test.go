package kinematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	events []string
	last   Contact
}

func (l *eventLog) OnContactEnter(c Contact) {
	l.events = append(l.events, "enter")
	l.last = c
}

func (l *eventLog) OnContactStay(c Contact) {
	l.events = append(l.events, "stay")
	l.last = c
}

func (l *eventLog) OnContactExit(c Contact) {
	l.events = append(l.events, "exit")
	l.last = c
}

type mapRouter map[EntityID][]ContactListener

func (r mapRouter) ListenersOf(id EntityID) []ContactListener { return r[id] }

func createTestContact(other Collider) Contact {
	return Contact{
		Other:            other,
		OtherEntity:      other.Entity,
		RelativeVelocity: Vec{X: 1, Y: -2},
		Point:            Vec{X: 3, Y: 0},
		Normal:           Vec{X: 0, Y: 1},
	}
}

func TestContactTracker_EnterStayExit(t *testing.T) {
	self := Collider{ID: 1, Entity: 1}
	floor := Collider{ID: 100, Entity: 0}
	tracker := NewContactTracker()
	log := &eventLog{}

	t.Run("nothing before a set is sealed", func(t *testing.T) {
		tracker.Record(createTestContact(floor))
		tracker.Flush(self, []ContactListener{log}, nil)
		assert.Empty(t, log.events)
	})

	t.Run("new contact enters and stays", func(t *testing.T) {
		tracker.Seal()
		tracker.Flush(self, []ContactListener{log}, nil)
		assert.Equal(t, []string{"enter", "stay"}, log.events)
		assert.True(t, tracker.Touching(floor))
	})

	t.Run("persisting contact only stays", func(t *testing.T) {
		log.events = nil
		tracker.Record(createTestContact(floor))
		tracker.Seal()
		tracker.Flush(self, []ContactListener{log}, nil)
		assert.Equal(t, []string{"stay"}, log.events)
	})

	t.Run("missing contact exits", func(t *testing.T) {
		log.events = nil
		tracker.Seal()
		tracker.Flush(self, []ContactListener{log}, nil)
		assert.Equal(t, []string{"exit"}, log.events)
		assert.Equal(t, floor, log.last.Other)
		assert.False(t, tracker.Touching(floor))
	})
}

func TestContactTracker_FirstContactPerColliderWins(t *testing.T) {
	self := Collider{ID: 1, Entity: 1}
	wall := Collider{ID: 5, Entity: 0}
	tracker := NewContactTracker()
	log := &eventLog{}

	first := createTestContact(wall)
	second := first
	second.Point = Vec{X: 99, Y: 99}

	tracker.Record(first)
	tracker.Record(second)
	tracker.Seal()
	tracker.Flush(self, []ContactListener{log}, nil)

	assert.Equal(t, []string{"enter", "stay"}, log.events)
	assert.Equal(t, first.Point, log.last.Point)
	assert.Equal(t, 1, tracker.Len())
}

func TestContactTracker_NotifiesOtherSideMirrored(t *testing.T) {
	self := Collider{ID: 1, Entity: 1}
	crate := Collider{ID: 20, Entity: 2}
	local := &eventLog{}
	remote := &eventLog{}
	router := mapRouter{2: {remote}}
	tracker := NewContactTracker()

	tracker.Record(createTestContact(crate))
	tracker.Seal()
	tracker.Flush(self, []ContactListener{local}, router)

	require.Equal(t, []string{"enter", "stay"}, remote.events)
	assert.Equal(t, self, remote.last.Other)
	assert.Equal(t, EntityID(1), remote.last.OtherEntity)
	assert.Equal(t, Vec{X: 0, Y: -1}, remote.last.Normal)
	assert.Equal(t, Vec{X: -1, Y: 2}, remote.last.RelativeVelocity)

	remote.events = nil
	tracker.Seal()
	tracker.Flush(self, []ContactListener{local}, router)
	assert.Equal(t, []string{"exit"}, remote.events)
}

func TestContactTracker_Reset(t *testing.T) {
	self := Collider{ID: 1, Entity: 1}
	floor := Collider{ID: 100}
	tracker := NewContactTracker()
	log := &eventLog{}

	tracker.Record(createTestContact(floor))
	tracker.Seal()
	tracker.Flush(self, []ContactListener{log}, nil)
	tracker.Reset()

	log.events = nil
	tracker.Seal()
	tracker.Flush(self, []ContactListener{log}, nil)
	assert.Empty(t, log.events, "reset drops history without exits")
	assert.False(t, tracker.Pending())
}
