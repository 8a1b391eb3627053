// Package trace provides the per-event log records of a simulation run.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordKind identifies which event produced a Record.
type RecordKind string

const (
	KindRecv        RecordKind = "recv"
	KindSend        RecordKind = "send"
	KindGenerate    RecordKind = "generate"
	KindSDNGenerate RecordKind = "sdn_generate"
)

// Record captures one triggered event.
//
// Node is the receiver for KindRecv and the sender for KindSend; it is unused
// for generation records, which only carry Src, Dst and (SDN) the rule fields.
type Record struct {
	Time       uint64
	Kind       RecordKind
	Node       uint32
	PacketID   uint32
	Src        uint32
	Dst        uint32
	Pre        uint32
	Nex        uint32
	PacketType string
	Extra      string

	// SDN rule fields, KindSDNGenerate only.
	Percent float64
	MatID   uint32
	ActID   uint32
}

// blank pads a label-less column to the width of a labelled one.
const blank = "        " + "           "

// String renders the record as one log line. The column layout is stable:
// tools that diff simulation logs depend on it.
func (r Record) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "time %11d", r.Time)
	switch r.Kind {
	case KindRecv, KindSend:
		label := "recID"
		if r.Kind == KindSend {
			label = "senID"
		}
		fmt.Fprintf(&b, "   %s%11d   pktID%11d   srcID%11d   dstID%11d   preID%11d   nexID%11d   %s%s",
			label, r.Node, r.PacketID, r.Src, r.Dst, r.Pre, r.Nex, r.PacketType, r.Extra)
	case KindGenerate:
		b.WriteString(blank + blank)
		fmt.Fprintf(&b, "   srcID%11d   dstID%11d", r.Src, r.Dst)
		b.WriteString(blank + blank)
		fmt.Fprintf(&b, "   %s generating", r.PacketType)
	case KindSDNGenerate:
		b.WriteString(blank)
		fmt.Fprintf(&b, " percent%11s   srcID%11d   dstID%11d   matID%11d   actID%11d   %s generating",
			strconv.FormatFloat(r.Percent, 'g', 6, 64), r.Src, r.Dst, r.MatID, r.ActID, r.PacketType)
	}
	return b.String()
}
