package scenario

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// The legacy input is a stream of whitespace-separated integers:
//
//	nodes dsts links flows horizon sdn_control_time budget
//	dst ids (ascending)
//	per node: id cost [broadcast_time if id is the next dst]
//	per link: id a b
//	per flow: id src dst size
type wordReader struct {
	sc  *bufio.Scanner
	pos int
}

func (r *wordReader) word(what string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", fmt.Errorf("reading %s: %w", what, err)
		}
		return "", fmt.Errorf("reading %s: unexpected end of input after %d values", what, r.pos)
	}
	r.pos++
	return r.sc.Text(), nil
}

func (r *wordReader) uint(what string, bits int) (uint64, error) {
	w, err := r.word(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(w, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("value %d (%s): %w", r.pos, what, err)
	}
	return v, nil
}

func (r *wordReader) id(what string) (uint32, error) {
	v, err := r.uint(what, 32)
	return uint32(v), err
}

func (r *wordReader) count(what string) (int, error) {
	v, err := r.uint(what, 31)
	return int(v), err
}

// LoadText reads a scenario in the legacy format from path.
func LoadText(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	defer f.Close()
	return ParseText(f)
}

// ParseText parses a scenario in the legacy format. Every node is a
// TRA_switch; SDN nodes come from SelectSDNNodes when enabled.
func ParseText(in io.Reader) (*Scenario, error) {
	sc := bufio.NewScanner(in)
	sc.Split(bufio.ScanWords)
	r := &wordReader{sc: sc}

	nodeSize, err := r.count("node count")
	if err != nil {
		return nil, err
	}
	dstSize, err := r.count("destination count")
	if err != nil {
		return nil, err
	}
	linkSize, err := r.count("link count")
	if err != nil {
		return nil, err
	}
	flowSize, err := r.count("flow count")
	if err != nil {
		return nil, err
	}
	s := &Scenario{}
	if s.Horizon, err = r.uint("horizon", 64); err != nil {
		return nil, err
	}
	if s.SDNControlTime, err = r.uint("sdn control time", 64); err != nil {
		return nil, err
	}
	budget, err := r.count("budget")
	if err != nil {
		return nil, err
	}
	s.Budget = budget

	s.Destinations = make([]DestinationSpec, dstSize)
	for i := range s.Destinations {
		if s.Destinations[i].ID, err = r.id("destination id"); err != nil {
			return nil, err
		}
	}

	s.Nodes = make([]NodeSpec, 0, nodeSize)
	for i, dstI := 0, 0; i < nodeSize; i++ {
		id, err := r.id("node id")
		if err != nil {
			return nil, err
		}
		cost, err := r.count("node cost")
		if err != nil {
			return nil, err
		}
		s.Nodes = append(s.Nodes, NodeSpec{ID: id, Cost: cost, Type: traSwitch})
		if dstI < len(s.Destinations) && s.Destinations[dstI].ID == id {
			if s.Destinations[dstI].BroadcastAt, err = r.uint("broadcast time", 64); err != nil {
				return nil, err
			}
			dstI++
		}
	}

	s.Links = make([]LinkSpec, linkSize)
	for i := range s.Links {
		l := &s.Links[i]
		if l.ID, err = r.count("link id"); err != nil {
			return nil, err
		}
		if l.A, err = r.id("link endpoint"); err != nil {
			return nil, err
		}
		if l.B, err = r.id("link endpoint"); err != nil {
			return nil, err
		}
	}

	s.Flows = make([]FlowSpec, flowSize)
	for i := range s.Flows {
		f := &s.Flows[i]
		if f.ID, err = r.count("flow id"); err != nil {
			return nil, err
		}
		if f.Src, err = r.id("flow src"); err != nil {
			return nil, err
		}
		if f.Dst, err = r.id("flow dst"); err != nil {
			return nil, err
		}
		if f.Size, err = r.uint("flow size", 64); err != nil {
			return nil, err
		}
	}
	return s, nil
}
