package uds

import (
	"bytes"
	"testing"
	"time"
)

func fixedSeedServer(seed [4]byte) *Server {
	return NewServerWithSeedSource(func() [4]byte { return seed })
}

func TestEmptyFrame(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process(nil)
	want := []byte{0x7F, 0x00, 0x13}
	if !bytes.Equal(got, want) {
		t.Errorf("Process(nil) = % X, want % X", got, want)
	}
}

func TestUnregisteredSID(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x99})
	if len(got) != 3 || got[0] != 0x7F || got[1] != 0x99 || got[2] != 0x11 {
		t.Errorf("Process([0x99]) = % X, want 7F 99 11", got)
	}
}

func TestEnterExtendedSession(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x10, 0x03})
	want := []byte{0x50, 0x03, 0x00, 0x32, 0x13, 0x88}
	if !bytes.Equal(got, want) {
		t.Errorf("Process(10 03) = % X, want % X", got, want)
	}
}

func TestDiagnosticSessionControlBadSubFunction(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x10, 0x05})
	want := []byte{0x7F, 0x10, 0x12}
	if !bytes.Equal(got, want) {
		t.Errorf("Process(10 05) = % X, want % X", got, want)
	}
}

func TestSecurityAccessFullHandshake(t *testing.T) {
	seed := [4]byte{0x00, 0x00, 0x00, 0x01}
	s := fixedSeedServer(seed)

	s.Process([]byte{0x10, 0x03})

	seedResp := s.Process([]byte{0x27, 0x01})
	want := []byte{0x67, 0x01, 0x00, 0x00, 0x00, 0x01}
	if !bytes.Equal(seedResp, want) {
		t.Fatalf("seed request = % X, want % X", seedResp, want)
	}

	expectedKey := uint32(0x00000001) | 0x11223344
	keyResp := s.Process([]byte{0x27, 0x02, byte(expectedKey >> 24), byte(expectedKey >> 16), byte(expectedKey >> 8), byte(expectedKey)})
	if !bytes.Equal(keyResp, []byte{0x67, 0x02}) {
		t.Fatalf("key response = % X, want 67 02", keyResp)
	}

	again := s.Process([]byte{0x27, 0x01})
	if !bytes.Equal(again, []byte{0x7F, 0x27, 0x24}) {
		t.Errorf("second seed request after unlock = % X, want 7F 27 24", again)
	}
}

func TestSecurityAccessWrongSession(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x27, 0x01})
	if !bytes.Equal(got, []byte{0x7F, 0x27, 0x22}) {
		t.Errorf("Process(27 01) in Default = % X, want 7F 27 22", got)
	}
}

func TestReadActiveSession(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x22, 0xF1, 0x86})
	want := []byte{0x62, 0xF1, 0x86, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("Process(22 F1 86) = % X, want % X", got, want)
	}
}

func TestReadUnknownDID(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x22, 0xAB, 0xCD})
	if !bytes.Equal(got, []byte{0x7F, 0x22, 0x31}) {
		t.Errorf("Process(22 AB CD) = % X, want 7F 22 31", got)
	}
}

func TestClearDiagnosticInformationGatedByDTCSetting(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	off := s.Process([]byte{0x85, 0x02})
	if !bytes.Equal(off, []byte{0xC5, 0x02}) {
		t.Fatalf("Process(85 02) = % X, want C5 02", off)
	}

	denied := s.Process([]byte{0x14})
	if !bytes.Equal(denied, []byte{0x7F, 0x14, 0x22}) {
		t.Fatalf("Process(14) with DTC setting off = % X, want 7F 14 22", denied)
	}

	on := s.Process([]byte{0x85, 0x01})
	if !bytes.Equal(on, []byte{0x65, 0x01}) {
		t.Fatalf("Process(85 01) = % X, want 65 01", on)
	}

	cleared := s.Process([]byte{0x14})
	if !bytes.Equal(cleared, []byte{0x54}) {
		t.Errorf("Process(14) with DTC setting on = % X, want 54", cleared)
	}
}

func TestTesterPresent(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	got := s.Process([]byte{0x3E, 0x00})
	if !bytes.Equal(got, []byte{0x7E, 0x00}) {
		t.Errorf("Process(3E 00) = % X, want 7E 00", got)
	}

	suppressed := s.Process([]byte{0x3E, 0x80})
	if len(suppressed) != 0 {
		t.Errorf("Process(3E 80) = % X, want empty", suppressed)
	}
}

func TestWriteThenReadDataByIdentifierRoundTrip(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	write := s.Process([]byte{0x2E, 0xF1, 0x89, '2', '.', '0'})
	if !bytes.Equal(write, []byte{0x6E, 0xF1, 0x89}) {
		t.Fatalf("WDBI = % X, want 6E F1 89", write)
	}

	read := s.Process([]byte{0x22, 0xF1, 0x89})
	want := []byte{0x62, 0xF1, 0x89, '2', '.', '0'}
	if !bytes.Equal(read, want) {
		t.Errorf("RDBI after WDBI = % X, want % X", read, want)
	}
}

func TestWriteThenReadMemoryByAddressRoundTrip(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	write := s.Process([]byte{0x3D, 0x00, 0x00, 0x10, 0x00, 0xAA, 0xBB})
	if !bytes.Equal(write, []byte{0x7D}) {
		t.Fatalf("WMBA = % X, want 7D", write)
	}

	read := s.Process([]byte{0x23, 0x00, 0x00, 0x10, 0x00})
	want := []byte{0x63, 0xAA, 0xBB}
	if !bytes.Equal(read, want) {
		t.Errorf("RMBA after WMBA = % X, want % X", read, want)
	}
}

func TestRoutineControlLifecycle(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	start := s.Process([]byte{0x31, 0x01, 0x02, 0x03})
	if !bytes.Equal(start, []byte{0x71, 0x01, 0x02, 0x03}) {
		t.Fatalf("start routine = % X, want 71 01 02 03", start)
	}

	result := s.Process([]byte{0x31, 0x03, 0x02, 0x03})
	want := []byte{0x71, 0x03, 0x02, 0x03, 0x01, 0x02, 0x03}
	if !bytes.Equal(result, want) {
		t.Errorf("request result = % X, want % X", result, want)
	}
}

func TestRoutineControlResultUnknownRoutine(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	got := s.Process([]byte{0x31, 0x03, 0x99, 0x99})
	if !bytes.Equal(got, []byte{0x7F, 0x31, 0x31}) {
		t.Errorf("request result for unknown routine = % X, want 7F 31 31", got)
	}
}

func TestUploadDownloadFamilyReturnsServiceNotSupported(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	for _, sid := range []byte{0x24, 0x2A, 0x2C, 0x34, 0x35, 0x36, 0x37, 0x38, 0x83, 0x84, 0x86, 0x87} {
		got := s.Process([]byte{sid})
		want := []byte{0x7F, sid, 0x11}
		if !bytes.Equal(got, want) {
			t.Errorf("Process(%02X) = % X, want % X", sid, got, want)
		}
	}
}

func TestECUResetClearsSessionAndSecurity(t *testing.T) {
	seed := [4]byte{0xDE, 0xAD, 0xBE, 0xEF}
	s := fixedSeedServer(seed)

	s.Process([]byte{0x10, 0x03})
	s.Process([]byte{0x27, 0x01})
	key := uint32(0xDEADBEEF) | 0x11223344
	s.Process([]byte{0x27, 0x02, byte(key >> 24), byte(key >> 16), byte(key >> 8), byte(key)})

	got := s.Process([]byte{0x11, 0x01})
	if !bytes.Equal(got, []byte{0x51, 0x01}) {
		t.Fatalf("hard reset = % X, want 51 01", got)
	}

	if s.State.Session() != 0x01 {
		t.Errorf("session after reset = %v, want default", s.State.Session())
	}
	if sec := s.State.Security(); sec.SeedSent || sec.Unlocked {
		t.Errorf("security after reset = %+v, want zero value", sec)
	}
}

func TestECUResetInProgrammingSessionRequiresHardReset(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	s.Process([]byte{0x10, 0x02})

	soft := s.Process([]byte{0x11, 0x03})
	if !bytes.Equal(soft, []byte{0x7F, 0x11, 0x31}) {
		t.Errorf("soft reset in programming session = % X, want 7F 11 31", soft)
	}

	hard := s.Process([]byte{0x11, 0x01})
	if !bytes.Equal(hard, []byte{0x51, 0x01}) {
		t.Errorf("hard reset in programming session = % X, want 51 01", hard)
	}
}

func TestSecurityAccessWrongKey(t *testing.T) {
	s := fixedSeedServer([4]byte{0x00, 0x00, 0x00, 0x01})
	s.Process([]byte{0x10, 0x03})
	s.Process([]byte{0x27, 0x01})

	got := s.Process([]byte{0x27, 0x02, 0x00, 0x00, 0x00, 0x00})
	if !bytes.Equal(got, []byte{0x7F, 0x27, 0x33}) {
		t.Errorf("wrong key = % X, want 7F 27 33", got)
	}
	if s.State.Security().Unlocked {
		t.Errorf("Unlocked set after a wrong key")
	}
}

func TestSecurityAccessKeyBeforeSeed(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	s.Process([]byte{0x10, 0x03})

	got := s.Process([]byte{0x27, 0x02, 0x11, 0x22, 0x33, 0x44})
	if !bytes.Equal(got, []byte{0x7F, 0x27, 0x24}) {
		t.Errorf("key before seed = % X, want 7F 27 24", got)
	}
}

func TestCommunicationControl(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	denied := s.Process([]byte{0x28, 0x00, 0x01})
	if !bytes.Equal(denied, []byte{0x7F, 0x28, 0x22}) {
		t.Fatalf("communication control in Default = % X, want 7F 28 22", denied)
	}

	s.Process([]byte{0x10, 0x03})

	ok := s.Process([]byte{0x28, 0x00, 0x01})
	if !bytes.Equal(ok, []byte{0x68, 0x00, 0x01}) {
		t.Errorf("communication control = % X, want 68 00 01", ok)
	}

	badType := s.Process([]byte{0x28, 0x00, 0x07})
	if !bytes.Equal(badType, []byte{0x7F, 0x28, 0x31}) {
		t.Errorf("unsupported communication type = % X, want 7F 28 31", badType)
	}

	badSub := s.Process([]byte{0x28, 0x09, 0x01})
	if !bytes.Equal(badSub, []byte{0x7F, 0x28, 0x12}) {
		t.Errorf("unsupported control type = % X, want 7F 28 12", badSub)
	}
}

func TestReadDTCInformationReports(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	count := s.Process([]byte{0x19, 0x01, 0xFF})
	if !bytes.Equal(count, []byte{0x59, 0x01, 0xFF, 0x01, 0x02}) {
		t.Errorf("report number by status mask = % X, want 59 01 FF 01 02", count)
	}

	listing := s.Process([]byte{0x19, 0x02, 0xFF})
	want := []byte{0x59, 0x02, 0xFF, 0x12, 0x34, 0x56, 0x08, 0x78, 0x9A, 0xBC, 0x28}
	if !bytes.Equal(listing, want) {
		t.Errorf("report by status mask = % X, want % X", listing, want)
	}

	badSub := s.Process([]byte{0x19, 0x42})
	if !bytes.Equal(badSub, []byte{0x7F, 0x19, 0x12}) {
		t.Errorf("unsupported report type = % X, want 7F 19 12", badSub)
	}
}

func TestInputOutputControlByIdentifier(t *testing.T) {
	s := fixedSeedServer([4]byte{})

	got := s.Process([]byte{0x2F, 0xF1, 0x89, 0x03})
	if !bytes.Equal(got, []byte{0x6F, 0xF1, 0x89}) {
		t.Errorf("IOCBI = % X, want 6F F1 89", got)
	}

	short := s.Process([]byte{0x2F, 0xF1, 0x89})
	if !bytes.Equal(short, []byte{0x7F, 0x2F, 0x13}) {
		t.Errorf("short IOCBI = % X, want 7F 2F 13", short)
	}
}

func TestServerOwnedSupervisor(t *testing.T) {
	s := fixedSeedServer([4]byte{})
	s.StartSupervisor(150 * time.Millisecond)
	defer s.StopSupervisor()

	s.Process([]byte{0x10, 0x03})

	time.Sleep(400 * time.Millisecond)

	got := s.Process([]byte{0x22, 0xF1, 0x86})
	if !bytes.Equal(got, []byte{0x62, 0xF1, 0x86, 0x01}) {
		t.Errorf("active session after timeout = % X, want 62 F1 86 01", got)
	}
}

func TestSecurityAccessLockoutAfterRepeatedWrongKeys(t *testing.T) {
	s := fixedSeedServer([4]byte{0x00, 0x00, 0x00, 0x01})
	s.Process([]byte{0x10, 0x03})
	s.Process([]byte{0x27, 0x01})

	wrongKey := []byte{0x27, 0x02, 0x00, 0x00, 0x00, 0x00}
	for i := 0; i < 3; i++ {
		got := s.Process(wrongKey)
		if !bytes.Equal(got, []byte{0x7F, 0x27, 0x33}) {
			t.Fatalf("wrong key %d = % X, want 7F 27 33", i+1, got)
		}
	}

	locked := s.Process(wrongKey)
	if !bytes.Equal(locked, []byte{0x7F, 0x27, 0x36}) {
		t.Fatalf("key after lockout = % X, want 7F 27 36", locked)
	}

	lockedSeed := s.Process([]byte{0x27, 0x01})
	if !bytes.Equal(lockedSeed, []byte{0x7F, 0x27, 0x36}) {
		t.Errorf("seed request after lockout = % X, want 7F 27 36", lockedSeed)
	}

	s.Process([]byte{0x11, 0x01})
	s.Process([]byte{0x10, 0x03})

	seedResp := s.Process([]byte{0x27, 0x01})
	if !bytes.Equal(seedResp, []byte{0x67, 0x01, 0x00, 0x00, 0x00, 0x01}) {
		t.Errorf("seed request after reset = % X, want 67 01 00 00 00 01", seedResp)
	}
}
