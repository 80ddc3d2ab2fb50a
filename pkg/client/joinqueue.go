package client

// joinQueue holds inserted rows while their author profile is looked up and
// releases them in arrival order, regardless of which lookup finishes first.
type joinQueue[T any] struct {
	entries []*pendingJoin[T]
}

type pendingJoin[T any] struct {
	id      string
	item    T
	ready   bool
	dropped bool
}

func (q *joinQueue[T]) push(id string, item T) *pendingJoin[T] {
	p := &pendingJoin[T]{id: id, item: item}
	q.entries = append(q.entries, p)
	return p
}

// find returns the newest live entry for id.
func (q *joinQueue[T]) find(id string) *pendingJoin[T] {
	for i := len(q.entries) - 1; i >= 0; i-- {
		if p := q.entries[i]; p.id == id && !p.dropped {
			return p
		}
	}
	return nil
}

func (q *joinQueue[T]) drop(id string) bool {
	p := q.find(id)
	if p == nil {
		return false
	}
	p.dropped = true
	return true
}

// release hands every finished entry at the head of the queue to apply.
func (q *joinQueue[T]) release(apply func(T)) int {
	n := 0
	for len(q.entries) > 0 {
		head := q.entries[0]
		if !head.ready && !head.dropped {
			break
		}
		q.entries = q.entries[1:]
		if !head.dropped {
			apply(head.item)
			n++
		}
	}
	return n
}

func (q *joinQueue[T]) len() int {
	return len(q.entries)
}
