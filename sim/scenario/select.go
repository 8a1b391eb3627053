package scenario

import "golang.org/x/exp/slices"

// SelectSDNNodes picks switches to upgrade to SDN. It walks node ids in
// ascending order, skips destinations, and takes every other node while
// the cost spent so far is below budget. The node that crosses the budget
// is still taken.
func SelectSDNNodes(costs []int, budget int, dsts []uint32) []uint32 {
	sorted := slices.Clone(dsts)
	slices.Sort(sorted)

	var picked []uint32
	spent := 0
	for id, dstI := 0, 0; id < len(costs); id++ {
		if spent >= budget {
			break
		}
		if dstI < len(sorted) && sorted[dstI] == uint32(id) {
			dstI++
			continue
		}
		picked = append(picked, uint32(id))
		spent += costs[id]
	}
	return picked
}
