package admission

import "time"

// State describes a requester's standing after a RequestAccess call.
type State string

const (
	// StateGranted means a fresh reservation was created for the requester;
	// they should claim it and start a capture session before it expires.
	StateGranted State = "granted"
	// StateActive means the requester already holds the community lease.
	StateActive State = "active"
	// StateReserved means the requester already holds the pending reservation.
	StateReserved State = "reserved"
	// StateQueued means the requester is waiting in the FIFO list.
	StateQueued State = "queued"
)

// Decision is the outcome of a RequestAccess call. Contention is not an
// error; it is this value.
type Decision struct {
	State State
	// Position is the 1-based wait-list position, set for StateQueued.
	Position int
	// ExpiresAt is the reservation deadline, set for StateGranted and
	// StateReserved.
	ExpiresAt time.Time
}

// Entry is one waiting requester.
type Entry struct {
	RequesterID string
	Workflow    string
	EnqueuedAt  time.Time
}

// Lease is the exclusive right to run OCR for one community. At most one
// exists per community at any instant.
type Lease struct {
	RequesterID string
	Workflow    string
	GrantedAt   time.Time
}

// ReservationInfo is the externally visible view of a pending reservation.
type ReservationInfo struct {
	RequesterID string
	Workflow    string
	ExpiresAt   time.Time
}

// Snapshot is a point-in-time view of one community's admission state.
type Snapshot struct {
	Lease       *Lease
	Reservation *ReservationInfo
	Waiting     []Entry
}
