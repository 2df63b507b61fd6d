package sampler

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/metric"
	"github.com/loopkin/slikmc/prior"
	"github.com/loopkin/slikmc/rotamer"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/spatial/r3"
)

func extended(Te *testing.T, seq ...string) *chem.Chain {
	if len(seq) == 0 {
		seq = []string{"ALA", "ALA", "ALA", "ALA", "ALA", "ALA", "ALA"}
	}
	phi := make([]float64, len(seq))
	psi := make([]float64, len(seq))
	for i := range seq {
		phi[i], psi[i] = -120, 130
	}
	C, err := chem.BuildPeptide(seq, phi, psi)
	if err != nil {
		Te.Fatal(err)
	}
	return C
}

func coords(C *chem.Chain) []r3.Vec {
	ret := make([]r3.Vec, C.NAtoms())
	for i := range ret {
		ret[i] = C.Position(i)
	}
	return ret
}

func sameCoords(a, b []r3.Vec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//peptide bonds, C(i)-N(i+1)
func peptideBonds(Te *testing.T, C *chem.Chain) []float64 {
	ret := make([]float64, C.Len()-1)
	for i := range ret {
		c, err := C.AtomPosition(i, chem.BbC)
		if err != nil {
			Te.Fatal(err)
		}
		n, _ := C.AtomPosition(i+1, chem.BbN)
		ret[i] = r3.Norm(r3.Sub(n, c))
	}
	return ret
}

type alwaysColliding struct {
	calls int
}

func (a *alwaysColliding) InAnyCollision(V *chem.View) (bool, error) {
	a.calls++
	return true, nil
}

func TestBlocks(Te *testing.T) {
	C := extended(Te)
	B, err := Blocks(C)
	if err != nil {
		Te.Fatal(err)
	}
	if len(B) != C.Len()-3 {
		Te.Fatalf("Expected %d blocks, got %d", C.Len()-3, len(B))
	}
	for i, b := range B {
		first, last := b.TopLevel()
		if first != i || last != i+3 {
			Te.Errorf("Block %d covers residues %d-%d", i, first, last)
		}
		if b.Attached() {
			Te.Errorf("Block %d should not own its residues yet", i)
		}
	}
	if _, err := Blocks(extended(Te, "ALA", "GLY", "ALA")); err == nil {
		Te.Error("A three residue chain can't be divided in blocks")
	}
}

func TestNew(Te *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	if _, err := New(extended(Te, "ALA", "GLY", "ALA"), nil, rnd); err == nil {
		Te.Error("A three residue chain was accepted")
	}
	o := DefaultOptions()
	o.Range(2, 4)
	if _, err := New(extended(Te), o, rnd); err == nil {
		Te.Error("A range with no complete block was accepted")
	}
	o = DefaultOptions()
	o.SideChains(true)
	_, err := New(extended(Te, "ALA", "SER", "LEU", "ALA", "ALA"), o, rnd, Data{Rotamers: rotamer.NewLibrary()})
	var u rotamer.UntrainedError
	if !errors.As(err, &u) {
		Te.Fatalf("Expected an UntrainedError, got %v", err)
	}
	if u.Residue != "SER" {
		Te.Errorf("The first untrained residue is SER, not %s", u.Residue)
	}
	S, err := New(extended(Te), nil, rnd)
	if err != nil {
		Te.Fatal(err)
	}
	if S.Chain().Index() == nil {
		Te.Error("The default collision grid was not set on the chain")
	}
	if _, err := S.Run(0, nil); err == nil {
		Te.Error("A run without iterations nor time budget was accepted")
	}
}

var update = flag.Bool("update", false, "rewrite the golden files in testdata")

func traceText(t []Decision) string {
	var b strings.Builder
	for _, d := range t {
		fmt.Fprintf(&b, "%d %d %s\n", d.Iteration, d.Block, d.Outcome)
	}
	return b.String()
}

//two samplers with the same seed must take exactly the same decisions, and those of seed 42 are
//kept in testdata.
func TestDeterminism(Te *testing.T) {
	const iterations = 10
	var traces [2][]Decision
	var final [2][]r3.Vec
	for k := 0; k < 2; k++ {
		C := extended(Te)
		before := peptideBonds(Te, C)
		o := DefaultOptions()
		o.Rama(true)
		o.Collision(true)
		o.BFactor(false)
		o.SideChains(false)
		o.FreeEnd(false)
		o.Trace(true)
		S, err := New(C, o, rand.New(rand.NewSource(42)))
		if err != nil {
			Te.Fatal(err)
		}
		stats, err := S.Run(iterations, nil)
		if err != nil {
			Te.Fatal(err)
		}
		if stats.Conformations != iterations {
			Te.Errorf("Expected %d conformations, got %d", iterations, stats.Conformations)
		}
		if stats.Distinct == 0 {
			Te.Error("No iteration changed the chain")
		}
		if C.Dirty() {
			Te.Error("The chain was left uncommitted")
		}
		for i, b := range peptideBonds(Te, C) {
			if math.Abs(b-before[i]) > 1e-3 {
				Te.Errorf("Peptide bond %d changed from %f to %f", i, before[i], b)
			}
		}
		for _, b := range S.Blocks() {
			if b.Attached() {
				Te.Error("A block was left attached")
			}
		}
		traces[k] = S.Trace()
		final[k] = coords(C)
	}
	if len(traces[0]) != iterations*4 || len(traces[0]) != len(traces[1]) {
		Te.Fatalf("Traces of %d and %d decisions", len(traces[0]), len(traces[1]))
	}
	accepted := 0
	for i := range traces[0] {
		if traces[0][i] != traces[1][i] {
			Te.Errorf("Decision %d differs: %v vs %v", i, traces[0][i], traces[1][i])
		}
		if traces[0][i].Outcome == Accepted {
			accepted++
		}
	}
	if accepted == 0 {
		Te.Error("No block move was accepted")
	}
	if !sameCoords(final[0], final[1]) {
		Te.Error("Same seed, different final conformations")
	}
	got := traceText(traces[0])
	golden := filepath.Join("testdata", "trace_seed42.golden")
	want, err := os.ReadFile(golden)
	if *update || errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll("testdata", 0755); err != nil {
			Te.Fatal(err)
		}
		if err := os.WriteFile(golden, []byte(got), 0644); err != nil {
			Te.Fatal(err)
		}
		Te.Logf("Wrote %s", golden)
		return
	}
	if err != nil {
		Te.Fatal(err)
	}
	if got != string(want) {
		Te.Errorf("The decisions for seed 42 changed. Expected:\n%sGot:\n%s", want, got)
	}
}

func TestSingularSkip(Te *testing.T) {
	C := extended(Te)
	before := coords(C)
	o := DefaultOptions()
	o.Collision(false)
	S, err := New(C, o, rand.New(rand.NewSource(3)))
	if err != nil {
		Te.Fatal(err)
	}
	S.tensor = func(*chem.Chain, int) (metric.Tensor, error) {
		return metric.Tensor{Singular: true}, nil
	}
	stats, err := S.Run(3, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if !sameCoords(before, coords(C)) {
		Te.Error("Blocks with a singular tensor were changed")
	}
	if stats.Distinct != 0 {
		Te.Errorf("%d distinct conformations with all blocks skipped", stats.Distinct)
	}
	for j, b := range stats.Blocks {
		if b.Singular != 3 || b.Proposals != 0 || b.Accepted != 0 {
			Te.Errorf("Block %d: %+v", j, b)
		}
	}
}

func TestCollisionGate(Te *testing.T) {
	C := extended(Te)
	before := coords(C)
	o := DefaultOptions()
	o.Rama(false)
	o.MaxCollisionReject(2)
	o.Trace(true)
	oracle := new(alwaysColliding)
	S, err := New(C, o, rand.New(rand.NewSource(7)), Data{Oracle: oracle})
	if err != nil {
		Te.Fatal(err)
	}
	stats, err := S.Run(2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if !sameCoords(before, coords(C)) {
		Te.Error("A colliding conformation was kept")
	}
	rejects := 0
	for _, b := range stats.Blocks {
		if b.Accepted != 0 {
			Te.Errorf("Accepted moves with an always colliding oracle: %+v", b)
		}
		rejects += b.CollisionRejects
	}
	if rejects != oracle.calls {
		Te.Errorf("%d oracle calls but %d collision rejections", oracle.calls, rejects)
	}
	for _, d := range S.Trace() {
		if d.Outcome == Accepted {
			Te.Errorf("Accepted decision %v", d)
		}
	}
	if C.Dirty() {
		Te.Error("The chain was left uncommitted")
	}
}

func TestMetropolisHastings(Te *testing.T) {
	//a ratio of at least 1 is accepted without using the generator.
	r1 := rand.New(rand.NewSource(9))
	r2 := rand.New(rand.NewSource(9))
	for _, pp := range []float64{0, 0.5, 3} {
		if !MetropolisHastings(0, 0, pp, 0, r1) {
			Te.Errorf("A move to a better state (%f) was rejected", pp)
		}
	}
	if r1.Uint64() != r2.Uint64() {
		Te.Error("Accepting a favorable move drew random numbers")
	}
	if MetropolisHastings(0, 0, math.NaN(), 0, r1) || AcceptanceProbability(0, math.NaN(), 0, 0) != 0 {
		Te.Error("A NaN ratio must be rejected")
	}
	prev := -1.0
	for pp := -10.0; pp <= 2; pp += 0.25 {
		a := AcceptanceProbability(0, -1, pp, -1)
		if a < prev {
			Te.Errorf("The acceptance probability decreased to %f at P'=%f", a, pp)
		}
		prev = a
	}
	if a := AcceptanceProbability(0, 0, -math.Log(4), 0); math.Abs(a-0.25) > 1e-12 {
		Te.Errorf("Expected an acceptance probability of 0.25, got %f", a)
	}
	acc := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if MetropolisHastings(0, 0, -math.Log(4), 0, r1) {
			acc++
		}
	}
	if f := float64(acc) / n; math.Abs(f-0.25) > 0.02 {
		Te.Errorf("Accepted %f of the moves, expected 0.25", f)
	}
}

//with a flat prior and the same number of closures, a move to a block with a larger metric tensor
//determinant is always accepted.
func TestLargerDeterminant(Te *testing.T) {
	cur := metric.Tensor{Det: math.E, LogDet: 1}
	prop := metric.Tensor{Det: math.E * math.E, LogDet: 2}
	Q := metric.LogQ(0, 2, cur)
	Qp := metric.LogQ(0, 2, prop)
	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		if !MetropolisHastings(0, Q, 0, Qp, rnd) {
			Te.Fatal("A move to a larger determinant was rejected")
		}
	}
	if a := AcceptanceProbability(0, Qp, 0, Q); math.Abs(a-math.Exp(-0.5)) > 1e-12 {
		Te.Errorf("The reverse move should be accepted with probability %f, got %f", math.Exp(-0.5), a)
	}
}

func TestFreeEnds(Te *testing.T) {
	C := extended(Te)
	o := DefaultOptions()
	o.FreeEnd(true)
	o.Collision(false)
	S, err := New(C, o, rand.New(rand.NewSource(13)))
	if err != nil {
		Te.Fatal(err)
	}
	B := S.Blocks()
	n0 := C.Residue(0).Atom(chem.BbN)
	c0 := C.Residue(0).Atom(chem.BbC)
	last := C.Len() - 1
	nl := C.Residue(last).Atom(chem.BbN)
	cl := C.Residue(last).Atom(chem.BbC)
	before := coords(C)
	for _, b := range []*chem.View{B[0], B[len(B)-1]} {
		if err := b.Attach(); err != nil {
			Te.Fatal(err)
		}
		if err := S.perturbEnds(b); err != nil {
			Te.Fatal(err)
		}
		b.Detach()
	}
	after := coords(C)
	if after[n0] == before[n0] || after[cl] == before[cl] {
		Te.Error("The ends of the chain didn't move")
	}
	if after[c0] != before[c0] || after[nl] != before[nl] {
		Te.Error("Atoms on the rotation axes moved")
	}
	inner0 := C.Residue(1).First()
	innerl := C.Residue(last - 1).Last()
	for i := inner0; i <= innerl; i++ {
		if after[i] != before[i] {
			Te.Fatalf("Atom %d, not at an end of the chain, moved", i)
		}
	}
	//the middle blocks don't touch the ends.
	if err := B[1].Attach(); err != nil {
		Te.Fatal(err)
	}
	S.perturbEnds(B[1])
	B[1].Detach()
	if !sameCoords(after, coords(C)) {
		Te.Error("A middle block moved in free-end mode")
	}
}

func TestFreeChain(Te *testing.T) {
	C := extended(Te)
	before := peptideBonds(Te, C)
	o := DefaultOptions()
	o.Collision(false)
	o.Rama(false)
	S, err := New(C, o, rand.New(rand.NewSource(17)))
	if err != nil {
		Te.Fatal(err)
	}
	mid, _ := C.Top().Sub(2, 4)
	if _, err := S.FreeChain(mid, 10); err == nil {
		Te.Error("A view without chain ends was accepted")
	}
	acc, err := S.FreeChain(C.Top(), 50)
	if err != nil {
		Te.Fatal(err)
	}
	//with a flat target every move is accepted
	if acc == 0 || acc > 50 {
		Te.Errorf("%d moves accepted", acc)
	}
	for i, b := range peptideBonds(Te, C) {
		if math.Abs(b-before[i]) > 1e-9 {
			Te.Errorf("Peptide bond %d changed from %f to %f", i, before[i], b)
		}
	}
	if C.Dirty() {
		Te.Error("The chain was left uncommitted")
	}
}

func TestSideChains(Te *testing.T) {
	C := extended(Te, "ALA", "SER", "LEU", "GLY", "VAL", "PHE", "ALA")
	o := DefaultOptions()
	o.SideChains(true)
	o.Collision(false)
	S, err := New(C, o, rand.New(rand.NewSource(19)))
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := S.Run(2, nil); err != nil {
		Te.Fatal(err)
	}
	lp, err := S.LogP(C.Top())
	if err != nil {
		Te.Fatal(err)
	}
	if math.IsNaN(lp) || math.IsInf(lp, 0) {
		Te.Errorf("Bad log density %f", lp)
	}
}

func TestSnapshots(Te *testing.T) {
	o := DefaultOptions()
	o.LogEvery(2)
	o.Collision(false)
	S, err := New(extended(Te), o, rand.New(rand.NewSource(23)))
	if err != nil {
		Te.Fatal(err)
	}
	var its []int
	_, err = S.Run(5, func(it int, C *chem.Chain) error {
		if C != S.Chain() {
			Te.Error("Snapshot of the wrong chain")
		}
		its = append(its, it)
		return nil
	})
	if err != nil {
		Te.Fatal(err)
	}
	if len(its) != 2 || its[0] != 2 || its[1] != 4 {
		Te.Errorf("Snapshots at iterations %v, expected [2 4]", its)
	}
	stop := errors.New("stop")
	if _, err := S.Run(5, func(int, *chem.Chain) error { return stop }); !errors.Is(err, stop) {
		Te.Errorf("The snapshot error was not returned: %v", err)
	}
}

//an error in the middle of a proposal must leave the block as it was.
func TestErrorRollback(Te *testing.T) {
	C := extended(Te)
	before := coords(C)
	o := DefaultOptions()
	o.Collision(false)
	calls := 0
	fail := prior.CustomFunc(func(*chem.Chain) (float64, error) {
		calls++
		//the first call is the density of the starting conformation, the second that of the proposal.
		if calls > 1 {
			return 0, errors.New("custom prior failure")
		}
		return 0, nil
	})
	S, err := New(C, o, rand.New(rand.NewSource(29)), Data{Custom: []prior.Custom{fail}})
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := S.Run(1, nil); err == nil {
		Te.Fatal("The prior error was not returned")
	}
	if S.Stats().Blocks[0].Proposals != 1 {
		Te.Fatalf("Expected the error at the first proposal, stats: %+v", S.Stats().Blocks[0])
	}
	if C.Dirty() {
		Te.Error("The chain was left dirty after an error")
	}
	if !sameCoords(before, coords(C)) {
		Te.Error("A half-applied proposal was left in the chain")
	}
	if S.Blocks()[0].Attached() {
		Te.Error("The block was left attached")
	}
}
