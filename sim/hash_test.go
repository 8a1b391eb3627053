package sim

import "testing"

// Reference values produced by std::hash<std::string> from libstdc++ on x86-64.
func TestStringHash_MatchesLibstdcxx(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"", 6142509188972423790},
		{"a", 4993892634952068459},
		{"abcdefgh", 8664279048047335611},
		{"10012", 15562582026497241250},
		{"1000", 16079285148485733777},
		{"10000007", 12177885091593290636},
		{"100122147483647", 1133395589740704061},
	}
	for _, tc := range tests {
		if got := stringHash(tc.in); got != tc.want {
			t.Errorf("stringHash(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestEventPriority_ConcatenatesDecimalFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []uint64
		want   uint32
	}{
		// recv at 110 from 0 to 1 carrying packet 0
		{"recv", []uint64{110, 0, 1, 0}, 990764345},
		// TRA control generation at 100 from 0 to broadcast
		{"ctrl gen", []uint64{100, 0, 4294967295}, 3792147238},
		// SDN generation at 150 from 3 to 0, match 3, action 4
		{"sdn gen", []uint64{150, 3, 0, 3, 4}, 1463280590},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := eventPriority(tc.fields...); got != tc.want {
				t.Errorf("eventPriority(%v) = %d, want %d", tc.fields, got, tc.want)
			}
		})
	}
}

func TestEventPriority_Deterministic(t *testing.T) {
	a := eventPriority(120, 1, 2, 7)
	b := eventPriority(120, 1, 2, 7)
	if a != b {
		t.Fatalf("eventPriority not repeatable: %d vs %d", a, b)
	}
	// "1"+"21" and "12"+"1" render the same string and must collide.
	if eventPriority(1, 21) != eventPriority(12, 1) {
		t.Error("expected identical renderings to hash identically")
	}
}
