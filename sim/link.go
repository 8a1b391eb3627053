package sim

import (
	"fmt"

	"github.com/iti/rngstream"
	"github.com/sirupsen/logrus"
)

// LinkType tags a link variant.
type LinkType string

const (
	SimpleLink LinkType = "simple_link"
	JitterLink LinkType = "jitter_link"
)

// Link is a directed latency provider from one node to another.
type Link interface {
	From() NodeID
	To() NodeID
	Type() LinkType
	// Latency is queried once per transmission over the link.
	Latency() Time
}

// LinkPrototype builds a link for the ordered pair (from, to).
type LinkPrototype func(from, to NodeID) Link

type linkKey struct {
	from, to NodeID
}

type baseLink struct {
	from, to NodeID
}

func (l *baseLink) From() NodeID { return l.from }
func (l *baseLink) To() NodeID   { return l.to }

// simpleLinkImpl has a fixed latency of OneHopDelay.
type simpleLinkImpl struct {
	baseLink
}

func newSimpleLink(from, to NodeID) Link {
	return &simpleLinkImpl{baseLink{from: from, to: to}}
}

func (l *simpleLinkImpl) Type() LinkType { return SimpleLink }
func (l *simpleLinkImpl) Latency() Time  { return OneHopDelay }

// jitterLinkImpl adds a uniform spread in [0, spread] ticks on top of a base
// latency. Every link draws from its own stream, seeded from the simulator's
// seed and the link endpoints only.
type jitterLinkImpl struct {
	baseLink
	base   Time
	spread Time
	rng    *rngstream.RngStream
}

// jitterLinkPrototype returns a prototype for jitter links with the given
// base latency and spread.
func jitterLinkPrototype(base, spread Time, seed uint64) LinkPrototype {
	return func(from, to NodeID) Link {
		rng := rngstream.New(fmt.Sprintf("link-%d-%d", from, to))
		if !rng.SetSeed(linkSeed(seed, from, to)) {
			logrus.Warnf("jitter_link %d->%d: rejected stream seed", from, to)
		}
		return &jitterLinkImpl{
			baseLink: baseLink{from: from, to: to},
			base:     base,
			spread:   spread,
			rng:      rng,
		}
	}
}

// rngstream requires the first three words below m1 and the last three
// below m2 (m2 < m1), none all zero.
const streamSeedModulus = 4294944443

// linkSeed derives the six stream seed words for the link from -> to.
func linkSeed(seed uint64, from, to NodeID) []uint64 {
	x := seed ^ uint64(from)<<32 ^ uint64(to)
	words := make([]uint64, 6)
	for i := range words {
		x = splitmix64(x)
		words[i] = 1 + x%(streamSeedModulus-1)
	}
	return words
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	z := x
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (l *jitterLinkImpl) Type() LinkType { return JitterLink }

func (l *jitterLinkImpl) Latency() Time {
	if l.spread == 0 {
		return l.base
	}
	d := Time(l.rng.RandU01() * float64(l.spread+1))
	return l.base + min(d, l.spread)
}
