package gkv

import "testing"

func TestConfiguration_Validate(t *testing.T) {
	c := Configuration{Transactional: true, HandleFactory: UUIDHandleFactory{}}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid configuration rejected: %v", err)
	}

	// Any combination of the two flags is legal.
	for _, c := range []Configuration{
		{HandleFactory: UUIDHandleFactory{}},
		{Transactional: true, HandleFactory: UUIDHandleFactory{}},
		{ReadOnly: true, HandleFactory: UUIDHandleFactory{}},
		{Transactional: true, ReadOnly: true, HandleFactory: UUIDHandleFactory{}},
	} {
		if err := c.Validate(); err != nil {
			t.Errorf("flag combination %+v rejected: %v", c, err)
		}
	}
}

func TestConfiguration_ValidateMissingHandleFactory(t *testing.T) {
	c := Configuration{Transactional: true}
	err := c.Validate()
	if err == nil {
		t.Fatalf("configuration without handle factory accepted")
	}
	if !IsConfigInvalid(err) {
		t.Errorf("error code got = %v, want ConfigInvalid", err)
	}
}

func TestConfiguration_ValidateInMemoryReadOnly(t *testing.T) {
	c := Configuration{InMemory: true, ReadOnly: true, HandleFactory: UUIDHandleFactory{}}
	err := c.Validate()
	if err == nil {
		t.Fatalf("in-memory read-only configuration accepted")
	}
	if !IsConfigInvalid(err) {
		t.Errorf("error code got = %v, want ConfigInvalid", err)
	}
}
