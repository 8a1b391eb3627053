package sim

import (
	"errors"
	"math"

	"github.com/trasdn/netsim/sim/registry"
)

// NodeID identifies a node. Broadcast is reserved and never names a node.
type NodeID uint32

// PacketID identifies a packet; replicas share the id of their source.
type PacketID uint32

// Time is the logical simulation clock, in ticks.
type Time uint64

// Broadcast means "every neighbor" in a header's NexID and "unset" in any
// other id field.
const Broadcast NodeID = math.MaxUint32

// OneHopDelay is the latency of a simple_link.
const OneHopDelay Time = 10

// DefaultSeed seeds the jitter streams when no seed is configured.
const DefaultSeed uint64 = 12345

// Recoverable errors are logged and returned with the operation yielding no
// result. ErrSchedulingInvariant is the only fatal one: it aborts Run.
var (
	ErrDuplicateID         = errors.New("duplicate id")
	ErrReservedID          = errors.New("broadcast id cannot be used")
	ErrDanglingReference   = errors.New("no such node")
	ErrSchedulingInvariant = errors.New("event scheduled before current time")
	ErrInvalidEventData    = errors.New("invalid event data")
	ErrPacketTypeMismatch  = errors.New("packet type mismatch")
	ErrReleasedPacket      = errors.New("packet already released")
	ErrPrototypeMismatch   = errors.New("prototype built a different variant")

	// ErrUnknownType is returned for a tag no registry knows.
	ErrUnknownType = registry.ErrUnknownType
)
