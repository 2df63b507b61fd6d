/*
 * main.go, part of slikmc.
 *
 * Copyright 2026 The slikmc authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//slikmc samples the backbone conformations of a protein chain, keeping the ends of each
//four residue block fixed by exact loop closure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/align"
	"github.com/loopkin/slikmc/chemstat"
	"github.com/loopkin/slikmc/chemplot"
	"github.com/loopkin/slikmc/clash"
	"github.com/loopkin/slikmc/ik"
	"github.com/loopkin/slikmc/prior"
	"github.com/loopkin/slikmc/rotamer"
	"github.com/loopkin/slikmc/sampler"
	"github.com/loopkin/slikmc/traj/stf"
	v3 "github.com/loopkin/slikmc/v3"
	"golang.org/x/exp/rand"
)

var verb int

// If level is larger or equal, prints the d arguments to stderr
// otherwise, does nothing.
func LogV(level int, d ...interface{}) {
	if level <= verb {
		fmt.Fprintln(os.Stderr, d...)
	}
}

// If level is larger or equal, prints the d arguments to stdout
// otherwise, does nothing.
func PrintV(level int, d ...interface{}) {
	if level <= verb {
		fmt.Println(d...)
	}
}

func main() {
	config := flag.String("config", "", "TOML configuration file. Flags given explicitly override its values")
	collision := flag.Bool("collision", true, "Reject conformations with steric clashes")
	rama := flag.Bool("rama", true, "Use the Ramachandran prior, and propose from it")
	bfactor := flag.Bool("bfactor", false, "Use the B-factors of the input as a positional prior")
	sidechains := flag.Bool("sidechains", false, "Sample side chain rotamers")
	freeend := flag.Bool("freeend", false, "Let the ends of the chain move")
	seconds := flag.Float64("time", 0, "Wall-clock time budget in seconds, 0 for no limit")
	iterations := flag.Int("iterations", 100, "Number of iterations, 0 to run until the time budget is over. Ignored if -time is given, unless set explicitly")
	start := flag.Int("start", 0, "First residue to sample (0-based)")
	end := flag.Int("end", -1, "Last residue to sample, -1 for the end of the chain")
	every := flag.Int("every", 10, "Write a snapshot every this many iterations")
	out := flag.String("out", "slikmc", "Prefix for the output files")
	seed := flag.Int64("seed", 1, "Seed for the random number generator")
	ramatable := flag.String("ramatable", "", "File with Ramachandran tables replacing the built-in ones")
	rotamers := flag.String("rotamers", "", "Rotamer library file. The built-in backbone-independent library is used if not given")
	scale := flag.Float64("clashscale", 0.75, "Fraction of the sum of van der Waals radii below which two atoms clash")
	build := flag.String("build", "", "Build an extended peptide with this one-letter sequence instead of reading a PDB file")
	trajout := flag.Bool("traj", false, "Also write the snapshots to a compressed stf trajectory")
	plot := flag.Bool("plot", false, "Plot the backbone dihedrals of the snapshots")
	ccd := flag.Bool("ccd", false, "Compare exact closure with cyclic coordinate descent on each block of the final conformation")
	rigid := flag.Float64("rigid", 0, "If larger than 0, report the residues that stay within this RMSD (A) of the input in the trajectory. Requires -traj")
	priormap := flag.String("priormap", "", "Write a heat map and a JSON dump of the Ramachandran prior of this residue type, and exit")
	verbose := flag.Int("v", 1, "Level of verbosity")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n  %s: [flags] protein.pdb\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	S, err := newSettings(*config, set)
	if err != nil {
		log.Fatal(err)
	}
	S.Bool("collision", "sampler.collision", collision)
	S.Bool("rama", "sampler.rama", rama)
	S.Bool("bfactor", "sampler.bfactor", bfactor)
	S.Bool("sidechains", "sampler.sidechains", sidechains)
	S.Bool("freeend", "sampler.free_end", freeend)
	S.Float("time", "sampler.time", seconds)
	S.Int("iterations", "sampler.iterations", iterations)
	*iterations = iterationBudget(*seconds, *iterations, S.Given("iterations", "sampler.iterations"))
	S.Int("start", "sampler.start", start)
	S.Int("end", "sampler.end", end)
	S.Int("every", "sampler.every", every)
	S.Int("v", "sampler.verbose", verbose)
	S.String("out", "output.prefix", out)
	S.Bool("traj", "output.traj", trajout)
	S.Bool("plot", "output.plot", plot)
	S.Float("rigid", "output.rigid", rigid)
	S.String("ramatable", "data.rama_table", ramatable)
	S.String("rotamers", "data.rotamers", rotamers)
	S.Float("clashscale", "data.clash_scale", scale)
	S.String("build", "data.build", build)
	var seedint = int(*seed)
	S.Int("seed", "sampler.seed", &seedint)
	verb = *verbose
	if *priormap != "" {
		if err := dumpPrior(*priormap, *ramatable, *out); err != nil {
			log.Fatal(err)
		}
		return
	}

	var C *chem.Chain
	if *build != "" {
		C, err = buildExtended(*build)
	} else {
		if len(flag.Args()) < 1 {
			flag.Usage()
			log.Fatal("slikmc requires a PDB file, or the -build flag")
		}
		C, err = chem.PDBRead(flag.Args()[0])
	}
	if err != nil {
		log.Fatal(err)
	}
	runID := uuid.New().String()
	LogV(1, "Run", runID, "chain", C.Sequence(), C.Len(), "residues", C.NAtoms(), "atoms")

	o := sampler.DefaultOptions()
	o.Collision(*collision)
	o.Rama(*rama)
	o.BFactor(*bfactor)
	o.SideChains(*sidechains)
	o.FreeEnd(*freeend)
	o.Range(*start, *end)
	o.LogEvery(*every)
	o.Verbose(max(*verbose-1, 0))
	o.TimeBudget(time.Duration(*seconds * float64(time.Second)))
	opts := []struct {
		name string
		set  func(float64)
	}{
		{"sampler.free_end_range", func(v float64) { o.FreeEndRange(v) }},
		{"sampler.proposal_sigma", func(v float64) { o.ProposalSigma(v) }},
		{"sampler.terminus_range", func(v float64) { o.TerminusRange(v) }},
		{"sampler.max_ik_sample", func(v float64) { o.MaxIKSample(int(v)) }},
		{"sampler.max_metropolis_reject", func(v float64) { o.MaxMetropolisReject(int(v)) }},
		{"sampler.max_collision_reject", func(v float64) { o.MaxCollisionReject(int(v)) }},
	}
	for _, v := range opts {
		f := -1.0
		S.Float("", v.name, &f)
		if f > 0 {
			v.set(f)
		}
	}

	var data sampler.Data
	if *ramatable != "" {
		if data.Rama, err = prior.RamachandranFromFile(*ramatable); err != nil {
			log.Fatal(err)
		}
	}
	if *rotamers != "" {
		if data.Rotamers, err = rotamer.ReadLibrary(*rotamers); err != nil {
			log.Fatal(err)
		}
	}
	var grid *clash.Grid
	if *collision {
		copts := clash.DefaultOptions()
		copts.Scale(*scale)
		if grid, err = clash.NewGrid(C, copts); err != nil {
			log.Fatal(err)
		}
		data.Oracle = grid
	}
	if data.Custom, err = S.Restraints(); err != nil {
		log.Fatal(err)
	}
	for _, c := range data.Custom {
		LogV(1, "Restraint", c)
	}
	rnd := rand.New(rand.NewSource(uint64(seedint)))
	smp, err := sampler.New(C, o, rnd, data)
	if err != nil {
		log.Fatal(err)
	}

	ref := v3.Zeros(C.NAtoms())
	ref.Copy(C.Coords())
	var tw *stf.StfW
	if *trajout {
		header := map[string]string{"run": runID, "seq": C.Sequence(), "every": strconv.Itoa(*every)}
		if tw, err = stf.NewWriter(*out+".stf", C.NAtoms(), header); err != nil {
			log.Fatal(err)
		}
	}
	var ramas [][]chem.RamaSet
	nsnap := 0
	snapshot := func(it int, C *chem.Chain) error {
		nsnap++
		name := snapshotName(*out, nsnap)
		if err := chem.PDBWrite(name, C, "run "+runID, fmt.Sprintf("iteration %d", it)); err != nil {
			return err
		}
		if tw != nil {
			if err := tw.WNext(C.Coords()); err != nil {
				return err
			}
		}
		ramas = append(ramas, C.Top().RamaList())
		LogV(2, "Wrote", name)
		return nil
	}
	begin := time.Now()
	stats, err := smp.Run(*iterations, snapshot)
	if err != nil {
		//the counters so far are still worth writing.
		LogV(0, "Sampling stopped:", err)
	}
	LogV(1, "Sampling took", time.Since(begin))
	if tw != nil {
		tw.Close()
	}
	PrintV(1, stats)
	if err2 := writeSummary(*out+".summary", stats); err2 != nil {
		log.Fatal(err2)
	}
	if *plot && len(ramas) > 0 {
		if err := chemplot.RamaPlotParts(ramas, "Sampled dihedrals", *out+"_rama"); err != nil {
			LogV(0, "Plot failed:", err)
		}
	}
	correlationReport(ramas)
	if grid != nil && verb >= 2 {
		//clashes already present in the input are never removed by the sampler.
		cs, err2 := grid.Collisions(C.Top())
		if err2 != nil {
			LogV(0, err2)
		}
		for _, c := range cs {
			LogV(2, fmt.Sprintf("Clash %s-%s %.2f A", atomLabel(C, c.I), atomLabel(C, c.J), c.Dist))
		}
	}
	if *rigid > 0 {
		if !*trajout {
			LogV(0, "-rigid requires -traj")
		} else {
			ao := align.DefaultOptions()
			ao.LessThanRMSD(*rigid)
			L, err2 := align.MostRigid(C, ref, *out+".stf", ao)
			if err2 != nil {
				LogV(0, "Rigid core search failed:", err2)
			} else {
				PrintV(1, L)
				PrintV(1, L.PyMOLSel())
			}
		}
	}
	if *ccd {
		ccdReport(C, rnd)
	}
	if err != nil {
		os.Exit(1)
	}
}

//iterationBudget returns the number of iterations to run. A time budget means running
//until the time is over, unless the number of iterations was explicitly given.
func iterationBudget(seconds float64, iterations int, explicit bool) int {
	if seconds > 0 && !explicit {
		return 0
	}
	return iterations
}

//snapshotName returns the name of the nth snapshot file, counting from 1.
func snapshotName(prefix string, n int) string {
	return fmt.Sprintf("%s_%05d.pdb", prefix, n)
}

//writeSummary writes the two counters of a run, one label:value line each.
func writeSummary(name string, stats *sampler.Stats) error {
	return os.WriteFile(name, []byte(stats.Summary()), 0644)
}

//correlationReport prints, for each residue, the integrated autocorrelation time of its
//backbone dihedrals over the snapshots, in snapshots.
func correlationReport(ramas [][]chem.RamaSet) {
	if len(ramas) < 10 {
		LogV(2, "Too few snapshots to estimate autocorrelation times")
		return
	}
	for r := range ramas[0] {
		var phi, psi []float64
		for _, frame := range ramas {
			if frame[r].PhiOK {
				phi = append(phi, frame[r].Phi)
			}
			if frame[r].PsiOK {
				psi = append(psi, frame[r].Psi)
			}
		}
		tphi := chemstat.CircularTime(phi, 5)
		tpsi := chemstat.CircularTime(psi, 5)
		PrintV(2, fmt.Sprintf("%s%d tau(phi) %.1f tau(psi) %.1f neff %.0f", ramas[0][r].Molname, ramas[0][r].MolID, tphi, tpsi, chemstat.EffectiveSize(len(ramas), max(tphi, tpsi))))
	}
}

//dumpPrior plots the Ramachandran prior for the residue type resname, from the table file
//(the built-in prior if empty), and saves it in JSON format.
func dumpPrior(resname, table, out string) error {
	R := prior.NewRamachandran()
	if table != "" {
		var err error
		if R, err = prior.RamachandranFromFile(table); err != nil {
			return err
		}
	}
	G := R.Grid(strings.ToUpper(resname))
	name := fmt.Sprintf("%s_prior_%s", out, strings.ToUpper(resname))
	if err := chemplot.PriorMap(G, true, "Log prior "+strings.ToUpper(resname), name); err != nil {
		return err
	}
	j, err := json.Marshal(G)
	if err != nil {
		return err
	}
	LogV(1, "Wrote", name+".png", name+".json")
	return os.WriteFile(name+".json", j, 0644)
}

func atomLabel(C *chem.Chain, i int) string {
	a := C.Atom(i)
	return fmt.Sprintf("%s%d/%s", a.MolName, a.MolID, a.Name)
}

//buildExtended builds a chain in a beta-strand conformation from a one-letter sequence.
func buildExtended(seq string) (*chem.Chain, error) {
	seq = strings.TrimSpace(seq)
	names := make([]string, len(seq))
	phi := make([]float64, len(seq))
	psi := make([]float64, len(seq))
	for i := range seq {
		names[i] = chem.ThreeLetter(seq[i])
		if names[i] == "UNK" {
			return nil, fmt.Errorf("Unknown residue code %c", seq[i])
		}
		phi[i], psi[i] = -120, 130
	}
	return chem.BuildPeptide(names, phi, psi)
}

//ccdReport perturbs the first free dihedral of each block of a copy of C, and reports the number
//of exact closures and the residual of a CCD closure to the original goals.
func ccdReport(C *chem.Chain, rnd *rand.Rand) {
	solver := ik.NewSolver()
	for first := 0; first+3 < C.Len(); first++ {
		D := C.Copy()
		goals, err := ik.GoalsOf(D, first+3)
		if err != nil {
			LogV(0, "Block", first, err)
			continue
		}
		V, _ := D.Top().Sub(first, first+3)
		if err := V.Attach(); err != nil {
			LogV(0, "Block", first, err)
			continue
		}
		delta := 20*rnd.Float64() - 10
		if err := V.Rotate(chem.Move{Kind: chem.Backbone, DOF: chem.PsiDOF(first), Dir: chem.Forward, Degrees: delta}); err != nil {
			LogV(0, "Block", first, err)
			continue
		}
		sols, err := solver.FindClosures(D, ik.Window(first+1), goals)
		if err != nil {
			LogV(0, "Block", first, err)
			continue
		}
		_, rmsd, err := ik.CCD(D, ik.Window(first+1), goals, 500, 1e-4)
		if err != nil {
			LogV(0, "Block", first, err)
			continue
		}
		PrintV(1, fmt.Sprintf("block %d psi %+.1f: %d exact closures, CCD RMSD %.2e A", first, delta, len(sols), rmsd))
	}
}
