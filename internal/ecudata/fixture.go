package ecudata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/dtn7/cboring"
	"github.com/howeyc/crc16"
	"github.com/tbrandt/udssim/internal/constants"
)

// snapshot is the CBOR-marshaled shape of a Store: a 4-element array of
// [dids, memory, dtcs, writableDIDs]. It implements cboring.CborMarshaler
// the way an administrative record does: array length, then each field in
// turn.
type snapshot struct {
	dids         map[constants.DID][]byte
	memory       map[uint32][]byte
	dtcs         []DTC
	writableDIDs []constants.DID
}

func (s *snapshot) MarshalCbor(w io.Writer) error {
	if err := cboring.WriteArrayLength(4, w); err != nil {
		return err
	}

	if err := cboring.WriteArrayLength(uint64(len(s.dids)), w); err != nil {
		return err
	}
	for did, data := range s.dids {
		if err := cboring.WriteUInt(uint64(did), w); err != nil {
			return err
		}
		if err := cboring.WriteByteString(data, w); err != nil {
			return err
		}
	}

	if err := cboring.WriteArrayLength(uint64(len(s.memory)), w); err != nil {
		return err
	}
	for addr, data := range s.memory {
		if err := cboring.WriteUInt(uint64(addr), w); err != nil {
			return err
		}
		if err := cboring.WriteByteString(data, w); err != nil {
			return err
		}
	}

	if err := cboring.WriteArrayLength(uint64(len(s.dtcs)), w); err != nil {
		return err
	}
	for _, d := range s.dtcs {
		if err := cboring.WriteUInt(uint64(d.Code), w); err != nil {
			return err
		}
		if err := cboring.WriteUInt(uint64(d.Status), w); err != nil {
			return err
		}
	}

	if err := cboring.WriteArrayLength(uint64(len(s.writableDIDs)), w); err != nil {
		return err
	}
	for _, did := range s.writableDIDs {
		if err := cboring.WriteUInt(uint64(did), w); err != nil {
			return err
		}
	}

	return nil
}

func (s *snapshot) UnmarshalCbor(r io.Reader) error {
	fields, err := cboring.ReadArrayLength(r)
	if err != nil {
		return err
	}
	if fields != 4 {
		return fmt.Errorf("ecudata: snapshot has %d top-level fields, want 4", fields)
	}

	didCount, err := cboring.ReadArrayLength(r)
	if err != nil {
		return err
	}
	s.dids = make(map[constants.DID][]byte, didCount)
	for i := uint64(0); i < didCount; i++ {
		key, err := cboring.ReadUInt(r)
		if err != nil {
			return err
		}
		data, err := cboring.ReadByteString(r)
		if err != nil {
			return err
		}
		s.dids[constants.DID(key)] = data
	}

	memCount, err := cboring.ReadArrayLength(r)
	if err != nil {
		return err
	}
	s.memory = make(map[uint32][]byte, memCount)
	for i := uint64(0); i < memCount; i++ {
		addr, err := cboring.ReadUInt(r)
		if err != nil {
			return err
		}
		data, err := cboring.ReadByteString(r)
		if err != nil {
			return err
		}
		s.memory[uint32(addr)] = data
	}

	dtcCount, err := cboring.ReadArrayLength(r)
	if err != nil {
		return err
	}
	s.dtcs = make([]DTC, 0, dtcCount)
	for i := uint64(0); i < dtcCount; i++ {
		code, err := cboring.ReadUInt(r)
		if err != nil {
			return err
		}
		status, err := cboring.ReadUInt(r)
		if err != nil {
			return err
		}
		s.dtcs = append(s.dtcs, DTC{Code: uint32(code), Status: byte(status)})
	}

	writableCount, err := cboring.ReadArrayLength(r)
	if err != nil {
		return err
	}
	s.writableDIDs = make([]constants.DID, 0, writableCount)
	for i := uint64(0); i < writableCount; i++ {
		did, err := cboring.ReadUInt(r)
		if err != nil {
			return err
		}
		s.writableDIDs = append(s.writableDIDs, constants.DID(did))
	}

	return nil
}

var crc16Table = crc16.MakeTable(crc16.CCITT)

// Dump encodes the store's contents as CBOR followed by a 2-byte
// big-endian CRC16/CCITT trailer over the encoded bytes, and writes it to
// path. A fixture written this way is portable across runs of the server.
func (st *Store) Dump(path string) error {
	st.mu.Lock()
	snap := &snapshot{
		dids:   copyDIDMap(st.dids),
		memory: copyAddrMap(st.memory),
		dtcs:   append([]DTC(nil), st.dtcs...),
	}
	for did := range st.writableDIDs {
		snap.writableDIDs = append(snap.writableDIDs, did)
	}
	st.mu.Unlock()

	var buf bytes.Buffer
	if err := cboring.Marshal(snap, &buf); err != nil {
		return fmt.Errorf("ecudata: marshal fixture: %w", err)
	}

	checksum := crc16.Checksum(buf.Bytes(), crc16Table)
	trailer := make([]byte, 2)
	binary.BigEndian.PutUint16(trailer, checksum)

	return os.WriteFile(path, append(buf.Bytes(), trailer...), 0o644)
}

// Load replaces the store's contents with a fixture previously written by
// Dump, verifying the CRC16 trailer before touching any state.
func (st *Store) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ecudata: read fixture: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("ecudata: fixture %s is too short for a CRC trailer", path)
	}

	body, trailer := raw[:len(raw)-2], raw[len(raw)-2:]
	want := binary.BigEndian.Uint16(trailer)
	got := crc16.Checksum(body, crc16Table)
	if got != want {
		return fmt.Errorf("ecudata: fixture %s failed CRC16 check: got %04X, want %04X", path, got, want)
	}

	snap := &snapshot{}
	if err := cboring.Unmarshal(snap, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("ecudata: unmarshal fixture: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.dids = snap.dids
	st.memory = snap.memory
	st.dtcs = snap.dtcs
	st.writableDIDs = make(map[constants.DID]struct{}, len(snap.writableDIDs))
	for _, did := range snap.writableDIDs {
		st.writableDIDs[did] = struct{}{}
	}
	if st.ioStatus == nil {
		st.ioStatus = make(map[constants.DID]byte)
	}
	if st.routines == nil {
		st.routines = make(map[uint16]RoutineState)
	}

	return nil
}

func copyDIDMap(in map[constants.DID][]byte) map[constants.DID][]byte {
	out := make(map[constants.DID][]byte, len(in))
	for k, v := range in {
		out[k] = append([]byte(nil), v...)
	}
	return out
}

func copyAddrMap(in map[uint32][]byte) map[uint32][]byte {
	out := make(map[uint32][]byte, len(in))
	for k, v := range in {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
