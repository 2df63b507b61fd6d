package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loopkin/slikmc/prior"
	"github.com/loopkin/slikmc/sampler"
)

func TestIterationBudget(Te *testing.T) {
	if n := iterationBudget(3600, 100, false); n != 0 {
		Te.Errorf("A time budget with the default iterations should run until the time is over, got %d iterations", n)
	}
	if n := iterationBudget(3600, 50, true); n != 50 {
		Te.Errorf("Explicit iterations must be kept, got %d", n)
	}
	if n := iterationBudget(0, 100, false); n != 100 {
		Te.Errorf("Without a time budget the iterations must be kept, got %d", n)
	}
}

func TestOutputFiles(Te *testing.T) {
	for i, want := range []string{"run_00001.pdb", "run_00002.pdb", "run_00003.pdb"} {
		if got := snapshotName("run", i+1); got != want {
			Te.Errorf("Snapshot %d named %s, expected %s", i+1, got, want)
		}
	}
	name := filepath.Join(Te.TempDir(), "run.summary")
	stats := &sampler.Stats{Distinct: 7, Conformations: 12}
	if err := writeSummary(name, stats); err != nil {
		Te.Fatal(err)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	want := []string{"stat_distinct:\t7", "stat_conformation:\t12"}
	if len(lines) != len(want) {
		Te.Fatalf("The summary has %d lines: %q", len(lines), b)
	}
	for i := range want {
		if lines[i] != want[i] {
			Te.Errorf("Summary line %d is %q, expected %q", i, lines[i], want[i])
		}
	}
}

func TestSettings(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "run.toml")
	conf := `[sampler]
iterations = 20
rama = false

[[restraint]]
res1 = 0
name1 = "CA"
res2 = 5
name2 = "CA"
target = 6.0
tolerance = 0.5
`
	if err := os.WriteFile(name, []byte(conf), 0644); err != nil {
		Te.Fatal(err)
	}
	S, err := newSettings(name, map[string]bool{"rama": true})
	if err != nil {
		Te.Fatal(err)
	}
	if !S.Given("iterations", "sampler.iterations") || S.Given("time", "sampler.time") {
		Te.Error("Wrong explicit settings")
	}
	it := 100
	S.Int("iterations", "sampler.iterations", &it)
	if it != 20 {
		Te.Errorf("Expected 20 iterations from the file, got %d", it)
	}
	rama := true
	S.Bool("rama", "sampler.rama", &rama)
	if !rama {
		Te.Error("The file overrode an explicit flag")
	}
	rs, err := S.Restraints()
	if err != nil {
		Te.Fatal(err)
	}
	if len(rs) != 1 {
		Te.Fatalf("Expected 1 restraint, got %d", len(rs))
	}
	r, ok := rs[0].(*prior.DistanceRestraint)
	if !ok || r.Res2 != 5 || r.Target != 6 || r.K != 10 {
		Te.Errorf("Wrong restraint %+v", rs[0])
	}
}
