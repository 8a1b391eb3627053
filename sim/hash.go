package sim

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// The same-time tie-break hashes the decimal rendering of an event's fields
// with the 64-bit MurmurHash2 variant used by libstdc++'s
// std::hash<std::string>, keeping the low 32 bits. Traces produced by the
// reference implementation therefore line up event for event.
const (
	hashMul  uint64 = 0xc6a4a7935bd1e995
	hashSeed uint64 = 0xc70f6907
)

func shiftMix(v uint64) uint64 {
	return v ^ (v >> 47)
}

// stringHash returns the 64-bit hash of s.
func stringHash(s string) uint64 {
	b := []byte(s)
	n := len(b)
	aligned := n &^ 7

	h := hashSeed ^ (uint64(n) * hashMul)
	for i := 0; i < aligned; i += 8 {
		data := shiftMix(binary.LittleEndian.Uint64(b[i:])*hashMul) * hashMul
		h ^= data
		h *= hashMul
	}
	if n&7 != 0 {
		var data uint64
		for i := n - 1; i >= aligned; i-- {
			data = data<<8 | uint64(b[i])
		}
		h ^= data
		h *= hashMul
	}
	h = shiftMix(h) * hashMul
	return shiftMix(h)
}

// eventPriority concatenates the decimal form of fields and hashes it.
func eventPriority(fields ...uint64) uint32 {
	var sb strings.Builder
	for _, f := range fields {
		sb.WriteString(strconv.FormatUint(f, 10))
	}
	return uint32(stringHash(sb.String()))
}
