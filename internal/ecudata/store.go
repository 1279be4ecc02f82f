// Package ecudata is the in-memory backing for everything a service handler
// reads or writes besides the server's own session/security state: the DID
// table, the memory-by-address map, the DTC list, the writable-DID set, and
// the last-applied I/O control and routine status.
package ecudata

import (
	"sync"

	"github.com/tbrandt/udssim/internal/constants"
)

// DTC is a stored Diagnostic Trouble Code: a 24-bit code and an 8-bit
// status mask.
type DTC struct {
	Code   uint32
	Status byte
}

// RoutineState is the lifecycle tag recorded for a RoutineControl id.
type RoutineState int

const (
	RoutineStarted RoutineState = iota
	RoutineStopped
)

// Store owns the ECU's data. Every exported method locks internally; the
// zero value is not usable, use NewStore.
type Store struct {
	mu sync.Mutex

	dids         map[constants.DID][]byte
	writableDIDs map[constants.DID]struct{}
	memory       map[uint32][]byte
	dtcs         []DTC
	ioStatus     map[constants.DID]byte
	routines     map[uint16]RoutineState
}

// NewStore creates a Store pre-populated with the identity DIDs a fresh ECU
// reports, and an empty memory map, DTC list, and I/O/routine status.
func NewStore() *Store {
	s := &Store{
		dids: map[constants.DID][]byte{
			constants.VIN:                  []byte("VIN123456789ABCDEF"),
			constants.SparePartNumber:      []byte("SP-0001"),
			constants.SoftwareNumber:       []byte("SW-0001"),
			constants.SoftwareVersion:      []byte("1.0.0"),
			constants.ECUManufacturingDate: []byte{0x20, 0x24, 0x01, 0x01},
			constants.ECUSerialNumber:      []byte("SN0000001"),
		},
		writableDIDs: map[constants.DID]struct{}{
			constants.SoftwareVersion: {},
		},
		memory: make(map[uint32][]byte),
		dtcs: []DTC{
			{Code: 0x123456, Status: 0x08},
			{Code: 0x789ABC, Status: 0x28},
		},
		ioStatus: make(map[constants.DID]byte),
		routines: make(map[uint16]RoutineState),
	}
	return s
}

// ReadDID returns the stored bytes for a DID, and whether it's known at all.
// The caller resolves ActiveDiagnosticSession before calling this, since
// that DID is virtual and not present in the table.
func (s *Store) ReadDID(did constants.DID) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.dids[did]
	return append([]byte(nil), data...), ok
}

// IsWritable reports whether WriteDataByIdentifier may target this DID.
func (s *Store) IsWritable(did constants.DID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.writableDIDs[did]
	return ok
}

// WriteDID stores data under a DID. The caller must have already checked
// IsWritable.
func (s *Store) WriteDID(did constants.DID, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dids[did] = append([]byte(nil), data...)
}

// ReadMemory returns the bytes stored at an address, and whether anything
// has been written there.
func (s *Store) ReadMemory(addr uint32) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.memory[addr]
	return append([]byte(nil), data...), ok
}

// WriteMemory stores data at an address, creating the entry if absent.
func (s *Store) WriteMemory(addr uint32, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory[addr] = append([]byte(nil), data...)
}

// DTCsByStatusMask returns the stored DTCs whose status overlaps the mask.
func (s *Store) DTCsByStatusMask(mask byte) []DTC {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []DTC
	for _, d := range s.dtcs {
		if d.Status&mask != 0 {
			out = append(out, d)
		}
	}
	return out
}

// CountByStatusMask is the count form used by ReportNumberByStatusMask.
func (s *Store) CountByStatusMask(mask byte) int {
	return len(s.DTCsByStatusMask(mask))
}

// ClearDTCs empties the DTC list.
func (s *Store) ClearDTCs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dtcs = nil
}

// SetIOStatus records the last control option applied to a DID via
// InputOutputControlByIdentifier.
func (s *Store) SetIOStatus(did constants.DID, option byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ioStatus[did] = option
}

// SetRoutineStatus records a routine's lifecycle tag.
func (s *Store) SetRoutineStatus(routineID uint16, state RoutineState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.routines[routineID] = state
}

// RoutineStatus returns a routine's lifecycle tag, and whether it has been
// started or stopped at all.
func (s *Store) RoutineStatus(routineID uint16) (RoutineState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.routines[routineID]
	return state, ok
}
