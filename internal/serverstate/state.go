// Package serverstate holds the single mutable record shared between every
// service handler and the session supervisor: active session, security
// state, the DTC-setting and tester-present flags, and the timestamp the
// supervisor measures inactivity against. Every exported method takes the
// guard itself, mirroring a single-actor record guarded by one mutex.
package serverstate

import (
	"sync"
	"time"

	"github.com/tbrandt/udssim/internal/constants"
)

// Security is the seed/key handshake state. unlocked implies seedSent;
// callers only ever observe this through State's methods, which preserve
// that invariant.
type Security struct {
	Seed     [4]byte
	SeedSent bool
	Unlocked bool
	Attempts uint8
}

// SeedSource supplies the 4 random bytes a SecurityAccess seed request
// hands back to the client. Production wiring uses crypto/rand; tests
// substitute a deterministic source.
type SeedSource func() [4]byte

// State is the server's sole shared mutable record. The zero value is not
// usable; construct with New.
type State struct {
	mu sync.Mutex

	session          constants.SessionType
	security         Security
	dtcSettingOn     bool
	testerPresent    bool
	lastChange       time.Time
	communicationSet constants.CommunicationControlType
	relockOnTimeout  bool

	seedSource SeedSource
}

// New returns a State in its startup configuration: Default session, no
// security unlock, DTC setting on, tester-present clear.
func New(seedSource SeedSource) *State {
	return &State{
		session:      constants.DefaultSession,
		dtcSettingOn: true,
		lastChange:   time.Now(),
		seedSource:   seedSource,
	}
}

// SetRelockOnTimeout selects whether a supervisor-driven reversion to the
// default session also clears the security state. The default keeps the
// unlock across the reversion; operators who consider that a hole can opt
// into relocking.
func (s *State) SetRelockOnTimeout(relock bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relockOnTimeout = relock
}

// Session returns the active session type.
func (s *State) Session() constants.SessionType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetSession changes the active session and records the change time, the
// same side effect DiagnosticSessionControl and EcuReset both need and the
// supervisor performs on reversion.
func (s *State) SetSession(session constants.SessionType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.lastChange = time.Now()
}

// DTCSettingOn reports whether DTC recording is currently enabled.
func (s *State) DTCSettingOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dtcSettingOn
}

// SetDTCSetting turns DTC recording on or off.
func (s *State) SetDTCSetting(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dtcSettingOn = on
}

// TesterPresent reports whether the tester-present flag is currently set.
func (s *State) TesterPresent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.testerPresent
}

// SetTesterPresent sets or clears the tester-present flag.
func (s *State) SetTesterPresent(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testerPresent = present
}

// CommunicationControl returns the communication-type byte recorded by the
// last successful CommunicationControl request.
func (s *State) CommunicationControl() constants.CommunicationControlType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.communicationSet
}

// SetCommunicationControl records the communication-type byte.
func (s *State) SetCommunicationControl(t constants.CommunicationControlType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.communicationSet = t
}

// RequestSeed generates a fresh seed, marks it sent, and returns it. The
// caller must have already verified the sequencing rule.
func (s *State) RequestSeed() [4]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := s.seedSource()
	s.security.Seed = seed
	s.security.SeedSent = true
	return seed
}

// TrySendKey validates a proposed key against the stashed seed using the
// `seed OR 0x11223344` scheme. On success it sets unlocked and resets the
// attempt counter; otherwise it increments the counter and returns false.
func (s *State) TrySendKey(key uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := uint32(s.security.Seed[0])<<24 | uint32(s.security.Seed[1])<<16 |
		uint32(s.security.Seed[2])<<8 | uint32(s.security.Seed[3])
	expected := seed | 0x11223344

	if key == expected {
		s.security.Unlocked = true
		s.security.Attempts = 0
		return true
	}
	s.security.Attempts++
	return false
}

// Security returns a copy of the current security state.
func (s *State) Security() Security {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.security
}

// ClearSecurity resets the security state, the side effect of a successful
// ECU reset.
func (s *State) ClearSecurity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.security = Security{}
}

// LastChange returns the timestamp of the last session change, the value
// the supervisor measures inactivity against.
func (s *State) LastChange() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastChange
}

// Tick applies one supervisor step: if tester-present is set, the
// inactivity clock is reset; otherwise, a non-default session older than
// timeout reverts to Default. Returns true if it reverted the session.
func (s *State) Tick(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if s.testerPresent {
		s.lastChange = now
		return false
	}

	if s.session != constants.DefaultSession && now.Sub(s.lastChange) >= timeout {
		s.session = constants.DefaultSession
		s.lastChange = now
		if s.relockOnTimeout {
			s.security = Security{}
		}
		return true
	}
	return false
}
