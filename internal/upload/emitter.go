package upload

import (
	"math"
	"sync"
)

// Callbacks receive transfer events. Any field may be nil.
type Callbacks struct {
	OnProgress    func(percent int)
	OnTransferred func()
	OnComplete    func(Response)
	OnError       func(reason string)
}

// emitter serializes callbacks for a single transfer and enforces their
// ordering. Callbacks run while mu is held so a late progress report can never
// overtake the terminal callback.
type emitter struct {
	mu          sync.Mutex
	cb          Callbacks
	last        int
	transferred bool
	done        bool
}

func newEmitter(cb Callbacks) *emitter {
	return &emitter{cb: cb, last: -1}
}

// Percent maps sent/total to a rounded integer in [0,100]. ok is false when
// the total is unknown.
func Percent(sent, total int64) (int, bool) {
	if total <= 0 {
		return 0, false
	}
	if sent < 0 {
		sent = 0
	}
	pct := int(math.Round(float64(sent) * 100 / float64(total)))
	return min(max(pct, 0), 100), true
}

func (e *emitter) progress(sent, total int64) {
	pct, ok := Percent(sent, total)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.emitProgressLocked(pct)
}

func (e *emitter) emitProgressLocked(pct int) {
	if e.done || pct <= e.last {
		return
	}
	e.last = pct
	if e.cb.OnProgress != nil {
		e.cb.OnProgress(pct)
	}
}

func (e *emitter) markTransferred() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done || e.transferred {
		return
	}
	e.transferred = true
	if e.cb.OnTransferred != nil {
		e.cb.OnTransferred()
	}
}

func (e *emitter) complete(resp Response) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return false
	}
	e.emitProgressLocked(100)
	e.done = true
	if e.cb.OnComplete != nil {
		e.cb.OnComplete(resp)
	}
	return true
}

func (e *emitter) fail(reason string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return false
	}
	e.done = true
	if e.cb.OnError != nil {
		e.cb.OnError(reason)
	}
	return true
}
