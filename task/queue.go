// Package task runs deferred, single-shot continuations on the simulation
// clock. Tasks are keyed by identity: scheduling again under the same key
// replaces the pending task, and cancelling removes it before it fires.
package task

import "sort"

type entry struct {
	due float64
	seq uint64
	fn  func()
}

// Queue is driven by Advance once per tick. It is not safe for concurrent use;
// the whole simulation runs on one goroutine.
type Queue struct {
	now   float64
	seq   uint64
	tasks map[any]*entry
}

func NewQueue() *Queue {
	return &Queue{tasks: make(map[any]*entry)}
}

// Now returns the accumulated clock in seconds.
func (q *Queue) Now() float64 {
	if q == nil {
		return 0
	}
	return q.now
}

// Schedule runs fn once delay seconds from now. Any task already pending under
// key is replaced.
func (q *Queue) Schedule(key any, delay float64, fn func()) {
	if q == nil || key == nil || fn == nil {
		return
	}
	if q.tasks == nil {
		q.tasks = make(map[any]*entry)
	}
	if delay < 0 {
		delay = 0
	}
	q.seq++
	q.tasks[key] = &entry{due: q.now + delay, seq: q.seq, fn: fn}
}

// Cancel drops the pending task for key and reports whether one existed.
func (q *Queue) Cancel(key any) bool {
	if q == nil || key == nil {
		return false
	}
	if _, ok := q.tasks[key]; !ok {
		return false
	}
	delete(q.tasks, key)
	return true
}

func (q *Queue) Pending(key any) bool {
	if q == nil || key == nil {
		return false
	}
	_, ok := q.tasks[key]
	return ok
}

func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.tasks)
}

// Advance moves the clock forward by dt and runs every task that became due,
// ordered by due time and then by scheduling order. A task is removed before
// it runs, so it may schedule a follow-up under its own key.
func (q *Queue) Advance(dt float64) {
	if q == nil {
		return
	}
	if dt > 0 {
		q.now += dt
	}
	if len(q.tasks) == 0 {
		return
	}

	type dueTask struct {
		key any
		e   *entry
	}
	var due []dueTask
	for key, e := range q.tasks {
		if e.due <= q.now {
			due = append(due, dueTask{key: key, e: e})
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].e.due != due[j].e.due {
			return due[i].e.due < due[j].e.due
		}
		return due[i].e.seq < due[j].e.seq
	})

	for _, d := range due {
		// An earlier task in this batch may have cancelled or replaced it.
		if cur, ok := q.tasks[d.key]; !ok || cur != d.e {
			continue
		}
		delete(q.tasks, d.key)
		d.e.fn()
	}
}
