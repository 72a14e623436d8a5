package gkv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Handle is a persistent, 128-bit identifier addressing at most one stored
// record. It is a thin wrapper over github.com/google/uuid.UUID to keep gkv
// decoupled from the external package.
type Handle uuid.UUID

// HandleSize is the fixed serialized size of a Handle in bytes.
const HandleSize = 16

// ParseHandle converts a canonical UUID string to a Handle. It returns an
// error if the input is not a valid UUID.
func ParseHandle(id string) (Handle, error) {
	u, err := uuid.Parse(id)
	return Handle(u), err
}

// HandleFromBytes reconstructs a Handle from its serialized form. The input
// must be exactly HandleSize bytes.
func HandleFromBytes(ba []byte) (Handle, error) {
	u, err := uuid.FromBytes(ba)
	return Handle(u), err
}

// NewHandle returns a new randomly generated Handle. It retries on error with
// a 1ms backoff up to 10 times and panics only if all attempts fail (which
// should never happen under normal conditions).
func NewHandle() Handle {
	var err error
	for i := 0; i < 10; i++ {
		var id uuid.UUID
		id, err = uuid.NewRandom()
		if err == nil {
			return Handle(id)
		}
		// Sleep 1 millisecond then retry to generate new Handle.
		time.Sleep(time.Duration(1 * time.Millisecond))
	}
	// Panic if still can't generate after 10 retries. Should never happen but in case.
	panic(err)
}

// NilHandle is the zero-value Handle. It never addresses a stored record.
var NilHandle Handle

// IsNil reports whether the Handle equals the zero-value Handle.
func (h Handle) IsNil() bool {
	return bytes.Equal(h[:], NilHandle[:])
}

// Bytes returns the fixed-size serialized form of the Handle.
func (h Handle) Bytes() []byte {
	ba := make([]byte, HandleSize)
	copy(ba, h[:])
	return ba
}

// String returns the canonical string representation of the Handle.
func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// Compare compares two Handles and returns -1 if x < y, 1 if x > y, and 0 if
// they are equal.
func (x Handle) Compare(y Handle) int {
	return bytes.Compare(x[:], y[:])
}

// HandleFactory generates and parses persistent handles. The storage core
// accepts a factory at startup to validate configuration consistency; it only
// constructs handles itself for auto-assigned keys.
type HandleFactory interface {
	// New returns a freshly generated Handle.
	New() Handle
	// FromBytes reconstructs a Handle from its serialized form.
	FromBytes(ba []byte) (Handle, error)
	// FromString parses a Handle from its string representation.
	FromString(id string) (Handle, error)
}

// UUIDHandleFactory is the default HandleFactory producing random 128-bit
// (UUID v4) handles.
type UUIDHandleFactory struct{}

// New returns a freshly generated random Handle.
func (UUIDHandleFactory) New() Handle {
	return NewHandle()
}

// FromBytes reconstructs a Handle from a HandleSize-byte slice.
func (UUIDHandleFactory) FromBytes(ba []byte) (Handle, error) {
	if len(ba) != HandleSize {
		return NilHandle, fmt.Errorf("handle must be %d bytes, got %d", HandleSize, len(ba))
	}
	return HandleFromBytes(ba)
}

// FromString parses a Handle from its canonical string form.
func (UUIDHandleFactory) FromString(id string) (Handle, error) {
	return ParseHandle(id)
}
