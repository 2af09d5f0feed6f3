// lane.go: Execution lanes: enqueue processes, dequeue drains completions.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cryptodev

import (
	"sync"
	"sync/atomic"
	"time"

	timecache "github.com/agilira/go-timecache"
	"github.com/eapache/queue"
)

// LaneStats is a snapshot of a lane's counters.
type LaneStats struct {
	ID              int       `json:"id"`
	EnqueuedCount   uint64    `json:"enqueued"`
	DequeuedCount   uint64    `json:"dequeued"`
	EnqueueErrCount uint64    `json:"enqueue_errors"`
	SucceededCount  uint64    `json:"succeeded"`
	FailedCount     uint64    `json:"failed"`
	AuthFailedCount uint64    `json:"auth_failed"`
	Pending         int       `json:"pending"`
	LastActive      time.Time `json:"last_active"`
}

type laneCounters struct {
	enqueued   atomic.Uint64
	dequeued   atomic.Uint64
	enqueueErr atomic.Uint64
	succeeded  atomic.Uint64
	failed     atomic.Uint64
	authFailed atomic.Uint64
}

// Lane is one queue pair. Operations are processed synchronously by Enqueue
// and parked on the completion queue until Dequeue collects them. Enqueue
// must be driven by one goroutine at a time; Dequeue may run concurrently
// with it.
type Lane struct {
	id        int
	providers providerSet

	procMu  sync.Mutex // serialises Enqueue: arena and scratch
	arena   *sessionArena
	scratch [2 * maxDigestSize]byte

	mu        sync.Mutex // guards completed
	completed *queue.Queue
	depth     int

	stats      laneCounters
	lastActive atomic.Int64
}

func newLane(id, depth, arenaSize int, providers providerSet) *Lane {
	return &Lane{
		id:        id,
		providers: providers,
		arena:     newSessionArena(arenaSize),
		completed: queue.New(),
		depth:     depth,
	}
}

// ID returns the lane index.
func (l *Lane) ID() int { return l.id }

// Enqueue processes ops in order and queues them for Dequeue. It stops at
// the first operation whose session cannot be resolved, which is marked
// StatusInvalidSession and not queued, or when the completion queue is full.
// Operations that fail processing are still queued with their status.
// It returns the number of operations queued.
func (l *Lane) Enqueue(ops []*Operation) int {
	l.procMu.Lock()
	defer l.procMu.Unlock()

	l.mu.Lock()
	room := l.depth - l.completed.Length()
	l.mu.Unlock()

	n := 0
	for _, op := range ops {
		if n == room {
			break
		}
		if op == nil || !l.process(op) {
			l.stats.enqueueErr.Add(1)
			break
		}
		l.mu.Lock()
		l.completed.Add(op)
		l.mu.Unlock()
		n++
	}
	if n > 0 {
		l.stats.enqueued.Add(uint64(n))
		l.touch()
	}
	return n
}

// Dequeue returns up to max completed operations in completion order.
func (l *Lane) Dequeue(max int) []*Operation {
	l.mu.Lock()
	if avail := l.completed.Length(); max > avail {
		max = avail
	}
	if max <= 0 {
		l.mu.Unlock()
		return nil
	}
	out := make([]*Operation, max)
	for i := range out {
		out[i] = l.completed.Remove().(*Operation)
	}
	l.mu.Unlock()

	l.stats.dequeued.Add(uint64(max))
	l.touch()
	return out
}

// process runs one operation and records its status. It returns false when
// the session could not be resolved.
func (l *Lane) process(op *Operation) bool {
	var err error
	switch op.Type {
	case OpSymmetric:
		var resolved bool
		if resolved, err = l.processSymmetric(op); !resolved {
			return false
		}
		op.Status = symStatus(err)
	case OpAsymmetric:
		sess := op.AsymSession
		if op.SessionType != WithSession || sess == nil || sess.typ == 0 {
			L.Debug("asymmetric operation without a usable session", "lane", l.id)
			op.Status = StatusInvalidSession
			return false
		}
		err = processAsym(op, sess)
		op.Status = statusFor(err)
	default:
		op.Status = StatusInvalidSession
		return false
	}

	switch op.Status {
	case StatusSuccess:
		l.stats.succeeded.Add(1)
	case StatusAuthFailed:
		l.stats.authFailed.Add(1)
	default:
		l.stats.failed.Add(1)
	}
	if err != nil {
		L.Debug("operation failed", "lane", l.id, "status", op.Status, "err", err)
	}
	return true
}

// processSymmetric resolves the session of op, borrowing an arena slot for
// sessionless operations, and runs it. resolved is false when no session could
// be resolved.
func (l *Lane) processSymmetric(op *Operation) (resolved bool, err error) {
	if op.SessionType == WithSession {
		if op.Session == nil || op.Session.chain == ChainNotSupported {
			op.Status = StatusInvalidSession
			return false, nil
		}
		return true, processSym(op, op.Session, l.id, l.scratch[:])
	}

	slot := l.arena.acquire()
	if slot == nil {
		L.Debug("sessionless arena exhausted", "lane", l.id)
		op.Status = StatusInvalidSession
		return false, nil
	}
	if err := buildSession(slot, op.Xform, 1, l.providers); err != nil {
		L.Debug("sessionless session build failed", "lane", l.id, "err", err)
		l.arena.release(slot)
		op.Status = StatusInvalidSession
		return false, nil
	}
	op.Session = slot
	err = processSym(op, slot, l.id, l.scratch[:])
	l.arena.release(slot)
	op.Session = nil
	return true, err
}

func (l *Lane) touch() {
	l.lastActive.Store(timecache.CachedTime().UnixNano())
}

// Stats returns a snapshot of the lane counters.
func (l *Lane) Stats() LaneStats {
	l.mu.Lock()
	pending := l.completed.Length()
	l.mu.Unlock()

	st := LaneStats{
		ID:              l.id,
		EnqueuedCount:   l.stats.enqueued.Load(),
		DequeuedCount:   l.stats.dequeued.Load(),
		EnqueueErrCount: l.stats.enqueueErr.Load(),
		SucceededCount:  l.stats.succeeded.Load(),
		FailedCount:     l.stats.failed.Load(),
		AuthFailedCount: l.stats.authFailed.Load(),
		Pending:         pending,
	}
	if ns := l.lastActive.Load(); ns != 0 {
		st.LastActive = time.Unix(0, ns)
	}
	return st
}
