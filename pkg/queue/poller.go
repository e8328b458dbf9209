package queue

import "time"

// poller owns the single wake-up timer used while pending tasks are not yet
// eligible. Every method must be called with the queue lock held.
type poller struct {
	interval time.Duration
	timer    *time.Timer
	deadline time.Time
	gen      uint64
	fire     func(gen uint64)
}

func newPoller(interval time.Duration, fire func(gen uint64)) *poller {
	return &poller{interval: interval, fire: fire}
}

// arm schedules a wake-up no later than one interval from now, or at wait if
// that is sooner. An already scheduled wake-up is kept unless the new one is
// earlier.
func (p *poller) arm(wait time.Duration) {
	if wait <= 0 || wait > p.interval {
		wait = p.interval
	}
	deadline := time.Now().Add(wait)
	if p.timer != nil {
		if !deadline.Before(p.deadline) {
			return
		}
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.deadline = deadline
	p.timer = time.AfterFunc(wait, func() { p.fire(gen) })
}

func (p *poller) disarm() {
	if p.timer == nil {
		return
	}
	p.timer.Stop()
	p.timer = nil
	p.gen++
}

func (p *poller) armed() bool {
	return p.timer != nil
}

// claim reports whether a fire with gen is still current and, if so, marks
// the timer as spent.
func (p *poller) claim(gen uint64) bool {
	if p.timer == nil || gen != p.gen {
		return false
	}
	p.timer = nil
	return true
}
