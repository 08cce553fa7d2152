package engine

import "time"

// Status is an operational snapshot of the engine for monitoring.
type Status struct {
	Running       bool      `json:"is_running"`
	NextPollTime  time.Time `json:"next_poll_time"`
	LastAuditTime time.Time `json:"last_audit_time"`
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Running:       e.state.running,
		NextPollTime:  e.state.nextPoll,
		LastAuditTime: e.state.lastAudit,
	}
}

func (e *Engine) setRunning(running bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.running = running
}

func (e *Engine) setNextPoll(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.nextPoll = t
}

func (e *Engine) lastAudit() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.lastAudit
}

func (e *Engine) setLastAudit(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.lastAudit = t
}
