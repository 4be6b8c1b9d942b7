package scanner

import (
	"sync/atomic"

	"github.com/soren-n/dusk/pkg/query"
)

// Handle is the consumer-facing control surface: submit commands, receive
// results on Messages(). A single background worker goroutine serves
// commands one at a time; submitting a new Run while one is in flight
// preempts it via the shared job counter.
type Handle struct {
	jobCounter *atomic.Uint64
	commands   chan Command
	messages   chan Message
}

// Spawn starts the scanner worker goroutine and returns a Handle.
func Spawn() *Handle {
	h := &Handle{
		jobCounter: new(atomic.Uint64),
		commands:   make(chan Command, 16),
		messages:   make(chan Message, 256),
	}
	go h.workerLoop()
	return h
}

// Messages returns the result stream.
func (h *Handle) Messages() <-chan Message {
	return h.messages
}

// RequestScan submits a scan, returning the JobID assigned to it. Any
// previously in-flight job is preempted.
func (h *Handle) RequestScan(q query.SearchQuery, scanTS int64, cacheCtx *CacheContext) uint64 {
	jobID := h.jobCounter.Add(1)
	h.commands <- Command{JobID: jobID, ScanTS: scanTS, Query: q, CacheCtx: cacheCtx}
	return jobID
}

// RequestCacheClear submits a cache-clear command for root, returning its
// JobID.
func (h *Handle) RequestCacheClear(root string, cacheCtx *CacheContext) uint64 {
	jobID := h.jobCounter.Add(1)
	h.commands <- Command{JobID: jobID, Query: query.SearchQuery{Raw: root, Root: root}, CacheCtx: cacheCtx, Clear: true}
	return jobID
}

// currentJobID reports the most recently assigned JobID, used by the
// in-flight walk to detect preemption.
func (h *Handle) currentJobID() uint64 {
	return h.jobCounter.Load()
}

// Close stops the worker goroutine and closes the message stream. Submit no
// further commands after calling Close.
func (h *Handle) Close() {
	close(h.commands)
}

func (h *Handle) workerLoop() {
	defer close(h.messages)
	for cmd := range h.commands {
		if cmd.Clear {
			h.runClearCache(cmd)
			continue
		}
		h.runScan(cmd)
	}
}
