// Package supervisor runs the background session-timeout loop: a fixed
// 100ms ticker that reverts a non-default session back to Default once it's
// been inactive for longer than the configured timeout, unless the
// tester-present flag is keeping it alive.
package supervisor

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tbrandt/udssim/internal/serverstate"
)

const tickInterval = 100 * time.Millisecond

// DefaultTimeout is the session inactivity window: 5 seconds.
const DefaultTimeout = 5 * time.Second

// Supervisor owns the background ticker goroutine. The zero value is not
// usable; construct with New, which starts the loop immediately.
type Supervisor struct {
	state   *serverstate.State
	timeout time.Duration

	stopSyn chan struct{}
	stopAck chan struct{}
}

// New starts a Supervisor ticking against state with the given timeout.
func New(state *serverstate.State, timeout time.Duration) *Supervisor {
	sv := &Supervisor{
		state:   state,
		timeout: timeout,
		stopSyn: make(chan struct{}),
		stopAck: make(chan struct{}),
	}

	go sv.loop()

	return sv
}

func (sv *Supervisor) loop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sv.stopSyn:
			close(sv.stopAck)
			return

		case <-ticker.C:
			if sv.state.Tick(sv.timeout) {
				log.Debug("session supervisor reverted an inactive session to default")
			}
		}
	}
}

// Stop halts the loop and waits for it to exit. Only allowed to be called
// once.
func (sv *Supervisor) Stop() {
	close(sv.stopSyn)
	<-sv.stopAck
}
