package gkv

import (
	"testing"
)

func TestHandle_BytesRoundTrip(t *testing.T) {
	h := NewHandle()
	ba := h.Bytes()
	if len(ba) != HandleSize {
		t.Fatalf("Bytes() length got = %d, want = %d", len(ba), HandleSize)
	}
	h2, err := HandleFromBytes(ba)
	if err != nil {
		t.Fatalf("HandleFromBytes failed: %v", err)
	}
	if h.Compare(h2) != 0 {
		t.Errorf("round-trip mismatch, got = %v, want = %v", h2, h)
	}
}

func TestHandle_StringRoundTrip(t *testing.T) {
	h := NewHandle()
	h2, err := ParseHandle(h.String())
	if err != nil {
		t.Fatalf("ParseHandle failed: %v", err)
	}
	if h.Compare(h2) != 0 {
		t.Errorf("round-trip mismatch, got = %v, want = %v", h2, h)
	}

	if _, err := ParseHandle("not-a-handle"); err == nil {
		t.Errorf("ParseHandle of garbage succeeded, want error")
	}
}

func TestHandle_Nil(t *testing.T) {
	if !NilHandle.IsNil() {
		t.Errorf("NilHandle.IsNil() got = false, want = true")
	}
	if NewHandle().IsNil() {
		t.Errorf("NewHandle().IsNil() got = true, want = false")
	}
}

func TestUUIDHandleFactory(t *testing.T) {
	var f HandleFactory = UUIDHandleFactory{}

	h := f.New()
	if h.IsNil() {
		t.Fatalf("factory produced a nil handle")
	}

	h2, err := f.FromBytes(h.Bytes())
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if h.Compare(h2) != 0 {
		t.Errorf("FromBytes round-trip mismatch, got = %v, want = %v", h2, h)
	}

	h3, err := f.FromString(h.String())
	if err != nil {
		t.Fatalf("FromString failed: %v", err)
	}
	if h.Compare(h3) != 0 {
		t.Errorf("FromString round-trip mismatch, got = %v, want = %v", h3, h)
	}

	if _, err := f.FromBytes([]byte{1, 2, 3}); err == nil {
		t.Errorf("FromBytes with a short slice succeeded, want error")
	}
}
