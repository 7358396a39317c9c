package presence

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomsFirstFit(t *testing.T) {
	r := NewRooms(3)

	for i := 0; i < 3; i++ {
		room, ordinal := r.Join(fmt.Sprintf("c%d", i))
		assert.Equal(t, 0, room)
		assert.Equal(t, i, ordinal)
	}
	room, ordinal := r.Join("c3")
	assert.Equal(t, 1, room, "fourth client opens a new room")
	assert.Equal(t, 0, ordinal)

	left, err := r.Leave("c1")
	require.NoError(t, err)
	assert.Equal(t, 0, left)
	assert.Equal(t, 2, r.Occupancy(0))
	assert.Equal(t, 1, r.Occupancy(1), "only the left room changes")

	members, err := r.Members(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c0", "c2"}, members)

	room, ordinal = r.Join("c4")
	assert.Equal(t, 0, room, "the gap in room 0 is refilled first")
	assert.Equal(t, 2, ordinal)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 4, r.Total())
}

func TestRoomsJoinIsIdempotent(t *testing.T) {
	r := NewRooms(2)
	r.Join("a")
	r.Join("b")
	room, ordinal := r.Join("b")
	assert.Equal(t, 0, room)
	assert.Equal(t, 1, ordinal)
	assert.Equal(t, 2, r.Occupancy(0))
}

func TestRoomsUnknown(t *testing.T) {
	r := NewRooms(0)
	assert.Equal(t, DefaultRoomSize, r.Capacity())

	_, err := r.Leave("ghost")
	assert.True(t, errors.Is(err, ErrRoomNotFound))

	_, err = r.Members(4)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	assert.Zero(t, r.Occupancy(4))

	_, ok := r.RoomOf("ghost")
	assert.False(t, ok)
}

func TestRoomsEmptyRoomKeepsIndex(t *testing.T) {
	r := NewRooms(1)
	r.Join("a")
	r.Join("b")
	_, err := r.Leave("a")
	require.NoError(t, err)

	members, err := r.Members(0)
	require.NoError(t, err)
	assert.Empty(t, members)

	room, _ := r.Join("c")
	assert.Equal(t, 0, room)
	got, ok := r.RoomOf("b")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestRoomsConcurrentJoin(t *testing.T) {
	r := NewRooms(3)
	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Join(fmt.Sprintf("c%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, r.Len())
	for room := 0; room < r.Len(); room++ {
		assert.Equal(t, 3, r.Occupancy(room))
	}
}
