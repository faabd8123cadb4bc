package world

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type velocity struct{ DX, DY float32 }
type name string

func TestComponents(t *testing.T) {
	w := New()
	e := w.Spawn()

	require.NoError(t, Insert(w, e, position{1, 2}))
	assert.True(t, Has[position](w, e))
	assert.False(t, Has[velocity](w, e))

	p, ok := Get[position](w, e)
	require.True(t, ok)
	assert.Equal(t, position{1, 2}, p)

	assert.True(t, Modify(w, e, func(p *position) { p.X = 5 }))
	p, _ = Get[position](w, e)
	assert.Equal(t, float32(5), p.X)

	assert.True(t, Remove[position](w, e))
	assert.False(t, Remove[position](w, e))
	assert.False(t, Modify(w, e, func(*position) {}))

	assert.ErrorIs(t, Insert(w, Entity(99), position{}), ErrNoEntity)
}

func TestDespawnClearsComponents(t *testing.T) {
	w := New()
	a, b, c := w.Spawn(), w.Spawn(), w.Spawn()
	for _, e := range []Entity{a, b, c} {
		require.NoError(t, Insert(w, e, position{X: float32(e)}))
	}

	assert.True(t, w.Despawn(a))
	assert.False(t, w.Despawn(a))
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, 2, Count[position](w))
	assert.Equal(t, []Entity{b, c}, w.Entities())

	// swap-remove kept the moved entity addressable
	p, ok := Get[position](w, c)
	require.True(t, ok)
	assert.Equal(t, float32(c), p.X)

	d := w.Spawn()
	assert.Greater(t, d, c)
}

func TestQueryOrder(t *testing.T) {
	w := New()
	var es []Entity
	for i := 0; i < 5; i++ {
		e := w.Spawn()
		es = append(es, e)
		require.NoError(t, Insert(w, e, position{X: float32(i)}))
		require.NoError(t, Insert(w, e, name("e")))
		if i != 2 {
			require.NoError(t, Insert(w, e, velocity{DX: 1}))
		}
	}
	// reorder the dense arrays
	require.True(t, Remove[position](w, es[0]))
	require.NoError(t, Insert(w, es[0], position{X: 10}))

	rows := Query3[position, velocity, name](w)
	require.Len(t, rows, 4)
	got := make([]Entity, len(rows))
	for i, r := range rows {
		got[i] = r.Entity
	}
	assert.Equal(t, []Entity{es[0], es[1], es[3], es[4]}, got)
	assert.Equal(t, float32(10), rows[0].A.X)

	assert.Len(t, Query2[position, velocity](w), 4)
	assert.Nil(t, Query3[position, velocity, int](w))
}

type shape interface{ sides() int }
type square struct{ n int }

func (s square) sides() int { return s.n }

func TestRecycledSlotsKeepIdentity(t *testing.T) {
	w := New()
	a := w.Spawn()
	require.NoError(t, Insert(w, a, position{X: 1}))
	require.NoError(t, Insert[shape](w, a, square{4}))
	require.True(t, w.Despawn(a))

	// the store hands the freed slot to the next entity
	b := w.Spawn()
	assert.NotEqual(t, a, b)
	assert.False(t, w.Alive(a))
	assert.False(t, Has[position](w, a))
	assert.False(t, Has[position](w, b))
	assert.ErrorIs(t, Insert(w, a, position{}), ErrNoEntity)

	require.NoError(t, Insert(w, b, position{X: 2}))
	require.NoError(t, Insert[shape](w, b, square{3}))
	rows := Query2[position, shape](w)
	require.Len(t, rows, 1)
	assert.Equal(t, b, rows[0].Entity)
	assert.Equal(t, 3, rows[0].B.sides())
	assert.Equal(t, 1, Count[shape](w))
}

func TestResources(t *testing.T) {
	w := New()
	_, ok := Resource[float64](w)
	assert.False(t, ok)

	SetResource(w, 1.5)
	v, ok := Resource[float64](w)
	require.True(t, ok)
	assert.Equal(t, 1.5, v)
}

func TestScheduleRunsSystemsInParallel(t *testing.T) {
	w := New()
	s := NewSchedule(WithWorkers(4))
	var calls atomic.Int32
	for i := 0; i < 8; i++ {
		s.Add(Tick, "count", func(w *World, dt float32) error {
			calls.Add(1)
			e := w.Spawn()
			return Insert(w, e, velocity{DX: dt})
		})
	}
	assert.Equal(t, 8, s.Len(Tick))
	assert.Equal(t, 0, s.Len(Init))

	require.NoError(t, s.Run(Tick, w, 0.5))
	assert.Equal(t, int32(8), calls.Load())
	assert.Equal(t, 8, Count[velocity](w))

	require.NoError(t, s.Run(Init, w, 0))
}

func TestScheduleJoinsErrorsAndRecoversPanics(t *testing.T) {
	w := New()
	s := NewSchedule(WithWorkers(2))
	boom := errors.New("boom")
	s.Add(Init, "fails", func(*World, float32) error { return boom })
	s.Add(Init, "panics", func(*World, float32) error { panic("bad") })
	s.Add(Init, "ok", func(*World, float32) error { return nil })

	err := s.Run(Init, w, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `init system "panics" panicked: bad`)
}
