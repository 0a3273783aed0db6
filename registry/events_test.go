package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamekit/protoreg/id"
)

func recvEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for registry event")
		return Event{}
	}
}

func TestWatchAddedRemoved(t *testing.T) {
	r, swordType, _ := newTestRegistry(t)

	events, stop := r.Watch(swordType, 4)
	defer stop()

	require.NoError(t, r.Insert(swordType, swordProto("excalibur", 42)))

	ev := recvEvent(t, events)
	assert.Equal(t, Added, ev.Kind)
	assert.Same(t, swordType, ev.Type)
	assert.Equal(t, "excalibur", ev.Name.Name())
	assert.Equal(t, Sword{Damage: 42}, ev.Record.Data)

	_, err := r.RemoveByName(swordType, "excalibur")
	require.NoError(t, err)

	ev = recvEvent(t, events)
	assert.Equal(t, Removed, ev.Kind)
	assert.Equal(t, "excalibur", ev.Name.Name())
}

func TestWatchIsPerType(t *testing.T) {
	r, swordType, potionType := newTestRegistry(t)

	swordEvents, stop := r.Watch(swordType, 4)
	defer stop()

	require.NoError(t, r.Insert(potionType, Prototype{
		Name: id.NewErasedNamed("elixir"),
		Data: Potion{Restores: "health"},
	}))
	require.NoError(t, r.Insert(swordType, swordProto("excalibur", 1)))

	// Only the sword event arrives on the sword subscription.
	ev := recvEvent(t, swordEvents)
	assert.Same(t, swordType, ev.Type)
	assert.Equal(t, "excalibur", ev.Name.Name())
	assert.Empty(t, swordEvents)
}

func TestWatchNoEventsOnFailedMutation(t *testing.T) {
	r, swordType, _ := newTestRegistry(t)

	events, stop := r.Watch(swordType, 4)
	defer stop()

	require.NoError(t, r.Insert(swordType, swordProto("excalibur", 1)))
	recvEvent(t, events) // drain the successful insert

	assert.Error(t, r.Insert(swordType, swordProto("excalibur", 2)))
	_, err := r.RemoveByName(swordType, "durendal")
	assert.Error(t, err)

	assert.Empty(t, events, "failed inserts and removes must not emit")
}

func TestWatchStop(t *testing.T) {
	r, swordType, _ := newTestRegistry(t)

	events, stop := r.Watch(swordType, 1)
	stop()
	stop() // idempotent

	require.NoError(t, r.Insert(swordType, swordProto("excalibur", 1)))

	_, open := <-events
	assert.False(t, open, "channel must be closed after stop")
}

func TestWatchSlowSubscriberDrops(t *testing.T) {
	r, swordType, _ := newTestRegistry(t)

	_, stop := r.Watch(swordType, 1)
	defer stop()

	require.NoError(t, r.Insert(swordType, swordProto("a", 1)))
	require.NoError(t, r.Insert(swordType, swordProto("b", 2)))
	require.NoError(t, r.Insert(swordType, swordProto("c", 3)))

	// Buffer of one: the second and third events are dropped, and
	// mutation never blocked on the slow subscriber.
	assert.Equal(t, uint64(2), r.DroppedEvents())
	assert.Equal(t, 3, r.Len(swordType))
}

func TestViewNeverEmits(t *testing.T) {
	r, swordType, _ := newTestRegistry(t)
	require.NoError(t, r.Insert(swordType, swordProto("excalibur", 42)))

	events, stop := r.Watch(swordType, 4)
	defer stop()

	v := r.View()

	p, ok := v.GetByName(swordType, "excalibur")
	require.True(t, ok)
	assert.Equal(t, Sword{Damage: 42}, p.Data)

	_, ok = v.Get(swordType, id.NewErased("excalibur"))
	assert.True(t, ok)

	tt, ok := v.Resolve("sword")
	require.True(t, ok)
	assert.Same(t, swordType, tt)
	assert.Equal(t, 1, v.Len(swordType))

	count := 0
	v.Range(swordType, func(Prototype) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count)

	assert.Empty(t, events, "read access must never emit events")
}
