package rdc

import "testing"

func TestSelectMFCommandBytes(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{responses: []fakeResponse{{sw1: 0x90, sw2: 0x00}}}

	if err := SelectMF(exec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0x00, 0xA4, 0x00, 0x00, 0x02, 0x3F, 0x00}
	got := exec.calls[0]
	if len(got) != len(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %x, want %x", got, want)
		}
	}
}

func TestSelectMFSurfacesCardError(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{responses: []fakeResponse{{sw1: 0x6A, sw2: 0x82}}}

	err := SelectMF(exec)
	ce, ok := err.(*CardError)
	if !ok {
		t.Fatalf("expected *CardError, got %v (%T)", err, err)
	}
	if ce.SW() != 0x6A82 {
		t.Fatalf("got SW=%04X, want 6A82", ce.SW())
	}
}

func TestReadBinaryPlainReturnsData(t *testing.T) {
	t.Parallel()
	payload := []byte{0x01, 0x02, 0x03}
	exec := &fakeExecutor{responses: []fakeResponse{{data: payload, sw1: 0x90, sw2: 0x00}}}

	got, err := ReadBinaryPlain(exec, 0x8B, 0x00)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(payload) {
		t.Fatalf("got %x, want %x", got, payload)
	}
}
