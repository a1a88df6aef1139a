package clock

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so scheduling is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Real returns the wall clock in the local zone.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// IDGenerator produces unique intake entry ids.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }
