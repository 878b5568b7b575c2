package engine

import (
	"sync"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog/log"
)

type queuedOp struct {
	key string
	op  func()
}

// OpsQueue runs the operations of one room in order on a single goroutine.
// Operations enqueued with a key replace a still pending one with the same key.
type OpsQueue struct {
	name string

	lock      sync.Mutex
	cond      *sync.Cond
	ops       deque.Deque[*queuedOp]
	pending   map[string]*queuedOp
	isStarted bool
	isStopped bool
	done      chan struct{}
}

func NewOpsQueue(name string) *OpsQueue {
	q := &OpsQueue{
		name:    name,
		pending: make(map[string]*queuedOp),
		done:    make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.lock)

	return q
}

func (q *OpsQueue) Start() {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.isStarted || q.isStopped {
		return
	}
	q.isStarted = true

	go q.process()
}

// Stop lets the queued operations finish and returns a channel closed
// once the worker exited
func (q *OpsQueue) Stop() <-chan struct{} {
	q.lock.Lock()
	defer q.lock.Unlock()

	if !q.isStopped {
		q.isStopped = true
		if !q.isStarted {
			close(q.done)
		}
		q.cond.Broadcast()
	}

	return q.done
}

func (q *OpsQueue) Enqueue(op func()) bool {
	return q.EnqueueLatest("", op)
}

// EnqueueLatest keeps only the last operation for key while it waits
func (q *OpsQueue) EnqueueLatest(key string, op func()) bool {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.isStopped {
		return false
	}

	if key != "" {
		if queued, ok := q.pending[key]; ok {
			queued.op = op
			return true
		}
	}

	queued := &queuedOp{key: key, op: op}
	if key != "" {
		q.pending[key] = queued
	}
	q.ops.PushBack(queued)
	q.cond.Signal()

	return true
}

// Sync waits until everything enqueued before the call has run
func (q *OpsQueue) Sync() {
	done := make(chan struct{})
	if !q.Enqueue(func() { close(done) }) {
		return
	}
	<-done
}

func (q *OpsQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.ops.Len()
}

func (q *OpsQueue) process() {
	defer close(q.done)

	for {
		q.lock.Lock()
		for q.ops.Len() == 0 && !q.isStopped {
			q.cond.Wait()
		}
		if q.ops.Len() == 0 {
			q.lock.Unlock()
			return
		}
		queued := q.ops.PopFront()
		if queued.key != "" {
			delete(q.pending, queued.key)
		}
		op := queued.op
		q.lock.Unlock()

		q.run(op)
	}
}

func (q *OpsQueue) run(op func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("service", "engine").Str("queue", q.name).Interface("panic", r).Msg("operation panicked")
		}
	}()

	op()
}
