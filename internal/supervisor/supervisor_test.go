package supervisor

import (
	"testing"
	"time"

	"github.com/tbrandt/udssim/internal/constants"
	"github.com/tbrandt/udssim/internal/serverstate"
)

func TestSupervisorRevertsAfterTimeout(t *testing.T) {
	state := serverstate.New(func() [4]byte { return [4]byte{} })
	state.SetSession(constants.ExtendedSession)

	sv := New(state, 150*time.Millisecond)
	defer sv.Stop()

	time.Sleep(400 * time.Millisecond)

	if state.Session() != constants.DefaultSession {
		t.Errorf("Session() = %v, want DefaultSession after timeout", state.Session())
	}
}

func TestSupervisorSuppressedByTesterPresent(t *testing.T) {
	state := serverstate.New(func() [4]byte { return [4]byte{} })
	state.SetSession(constants.ExtendedSession)
	state.SetTesterPresent(true)

	sv := New(state, 150*time.Millisecond)
	defer sv.Stop()

	time.Sleep(400 * time.Millisecond)

	if state.Session() != constants.ExtendedSession {
		t.Errorf("Session() = %v, want ExtendedSession preserved by tester-present", state.Session())
	}
}

func TestSupervisorStopIsPrompt(t *testing.T) {
	state := serverstate.New(func() [4]byte { return [4]byte{} })
	sv := New(state, DefaultTimeout)

	done := make(chan struct{})
	go func() {
		sv.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Stop() did not return within one second")
	}
}
