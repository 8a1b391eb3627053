// Package testutil provides shared test infrastructure for the simulator.
// It consolidates the golden dataset and assertion helpers used by the sim/
// and sim/scenario/ test packages.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one reference run: a scenario in the legacy input
// format and the output the reference simulator produced for it.
type GoldenTestCase struct {
	Name    string `json:"name"`
	Input   string `json:"input"`
	Trace   string `json:"trace"`    // file under testdata/ with the expected trace lines
	Report  string `json:"report"`   // expected routing report
	EndTime uint64 `json:"end_time"` // clock after the run
}

func testdataDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdataDir(t), "goldendataset.json"))
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// GoldenCase returns the named test case of the dataset.
func GoldenCase(t *testing.T, name string) GoldenTestCase {
	t.Helper()
	for _, tc := range LoadGoldenDataset(t).Tests {
		if tc.Name == name {
			return tc
		}
	}
	t.Fatalf("golden dataset has no case %q", name)
	return GoldenTestCase{}
}

// TraceLines reads the expected trace of tc, one entry per line.
func (tc GoldenTestCase) TraceLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(testdataDir(t), tc.Trace))
	if err != nil {
		t.Fatalf("Failed to read golden trace: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// AssertLinesEqual compares two traces line by line and reports the first
// mismatching line.
func AssertLinesEqual(t *testing.T, want, got []string) {
	t.Helper()
	for i := 0; i < len(want) && i < len(got); i++ {
		if want[i] != got[i] {
			t.Errorf("line %d:\n got: %q\nwant: %q", i+1, got[i], want[i])
			return
		}
	}
	if len(want) != len(got) {
		t.Errorf("got %d lines, want %d", len(got), len(want))
	}
}
