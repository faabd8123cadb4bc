package world

import (
	"cmp"
	"slices"

	"github.com/edwinsyarief/lazyecs"
)

// Row2 is one result of Query2.
type Row2[A, B any] struct {
	Entity Entity
	A      A
	B      B
}

// Row3 is one result of Query3.
type Row3[A, B, C any] struct {
	Entity Entity
	A      A
	B      B
	C      C
}

// Query2 returns copies of every (A, B) pair, ordered by entity.
func Query2[A, B any](w *World) []Row2[A, B] {
	w.rlock()
	defer w.runlock()
	if !registered[A]() || !registered[B]() {
		return nil
	}
	var rows []Row2[A, B]
	for q := lazyecs.CreateQuery2[cell[A], cell[B]](w.ecs); q.Next(); {
		a, b := q.Get()
		rows = append(rows, Row2[A, B]{Entity: w.owner[q.Entity()], A: a.v, B: b.v})
	}
	slices.SortFunc(rows, func(x, y Row2[A, B]) int { return cmp.Compare(x.Entity, y.Entity) })
	return rows
}

// Query3 returns copies of every (A, B, C) triple, ordered by entity.
func Query3[A, B, C any](w *World) []Row3[A, B, C] {
	w.rlock()
	defer w.runlock()
	if !registered[A]() || !registered[B]() || !registered[C]() {
		return nil
	}
	var rows []Row3[A, B, C]
	for q := lazyecs.CreateQuery3[cell[A], cell[B], cell[C]](w.ecs); q.Next(); {
		a, b, c := q.Get()
		rows = append(rows, Row3[A, B, C]{Entity: w.owner[q.Entity()], A: a.v, B: b.v, C: c.v})
	}
	slices.SortFunc(rows, func(x, y Row3[A, B, C]) int { return cmp.Compare(x.Entity, y.Entity) })
	return rows
}
