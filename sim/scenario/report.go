package scenario

import (
	"bufio"
	"fmt"
	"io"

	"github.com/trasdn/netsim/sim"
)

// WriteReport prints the routing state of every switch toward every
// destination:
//
//	<SDN switch ids, space separated>
//	<switch id>
//	<dst> <next hop>                     one line per destination (TRA)
//	<dst> <next> <pct>% ... <dst> ...    every destination, no line break (SDN)
//
// A TRA switch with no route to a destination reports next hop 0. An SDN
// switch row is not terminated, so the next switch id follows on the same
// line, as in the legacy output.
func WriteReport(w io.Writer, simulator *sim.Simulator, net *Network) error {
	bw := bufio.NewWriter(w)
	for _, id := range net.SDN {
		fmt.Fprintf(bw, "%d ", id)
	}
	fmt.Fprintln(bw)

	for _, id := range net.Switches {
		fmt.Fprintf(bw, "%d\n", id)
		switch n := simulator.Node(id).(type) {
		case *sim.TRASwitch:
			table := n.RoutingTable()
			for _, dst := range net.Destinations {
				fmt.Fprintf(bw, "%d %d\n", dst, table[dst])
			}
		case *sim.SDNSwitch:
			table := n.RoutingTable()
			for _, dst := range net.Destinations {
				fmt.Fprintf(bw, "%d ", dst)
				for _, h := range table[dst] {
					fmt.Fprintf(bw, "%d %d%% ", h.Next, int(h.Weight*100))
				}
			}
		}
	}
	return bw.Flush()
}
