package sim

// WeightedHop is one entry of an SDN forwarding rule: traffic goes to Next
// with share Weight.
type WeightedHop struct {
	Next   NodeID
	Weight float64
}

// admitAdvert decides whether an advertisement with the given metric,
// received from neighbor pre, replaces what a node already holds for its
// origin. A smaller metric always wins; on equal metrics the lower
// neighbor id wins.
func admitAdvert(seen bool, storedMetric uint32, storedHop NodeID, metric uint32, pre NodeID) bool {
	switch {
	case !seen:
		return true
	case metric > storedMetric:
		return false
	case metric == storedMetric && storedHop <= pre:
		return false
	default:
		return true
	}
}

// advertMetric extracts the metric a control packet is ranked by: the hop
// counter for TRA control, the match id for SDN control.
func advertMetric(p *Packet) (uint32, bool) {
	switch pld := p.Payload.(type) {
	case *TRACtrlPayload:
		return pld.Counter, true
	case *SDNCtrlPayload:
		return uint32(pld.MatID), true
	}
	return 0, false
}

// reflood readdresses p as a broadcast from self and hands it to the send
// machinery.
func reflood(n *BaseNode, p *Packet) {
	p.Header.PreID = n.id
	p.Header.NexID = Broadcast
	p.Header.DstID = Broadcast
	n.SendHandler(p)
}
