package client

import "context"

// loop runs closures one at a time on a single goroutine. Everything a view
// owns is only touched from inside its loop.
type loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	tasks  chan func()
	done   chan struct{}
}

func newLoop(parent context.Context) *loop {
	ctx, cancel := context.WithCancel(parent)
	l := &loop{
		ctx:    ctx,
		cancel: cancel,
		tasks:  make(chan func(), 256),
		done:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case fn := <-l.tasks:
			// Results that arrive after Close are dropped here.
			if l.ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}

// post schedules fn and reports whether the loop was still alive.
func (l *loop) post(fn func()) bool {
	if l.ctx.Err() != nil {
		return false
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// call runs fn on the loop and waits for it. It must not be used from
// inside the loop.
func (l *loop) call(fn func()) error {
	finished := make(chan struct{})
	if !l.post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrClosed
	}
}

func (l *loop) stop() {
	l.cancel()
	<-l.done
}
