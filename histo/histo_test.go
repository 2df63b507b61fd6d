package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestHistoIO(Te *testing.T) {
	rawdata := []float64{1, 6, 3, 2, 4, 5, 7, 6, 3.5, 3, 5, 1, 1, 0, 0, 5, 8, 1, 2, 3, 44, 3, 7, 3, 1, 3, 5, 32, 1}
	D := NewData([]float64{0, 1, 2, 3, 4, 8}, rawdata, 3)
	fmt.Println(D.String())
	j, err := json.Marshal(D)
	if err != nil {
		Te.Fatal(err)
	}
	D2 := new(Data)
	if err := json.Unmarshal(j, D2); err != nil {
		Te.Fatal(err)
	}
	if D2.ID() != 3 || D2.Sum() != D.Sum() {
		Te.Errorf("JSON round trip changed the histogram: %s vs %s", D2, D)
	}
	//44, 32 and 8 are out of range
	if D.Sum() != float64(len(rawdata)-3) {
		Te.Errorf("Expected %d data points, got %f", len(rawdata)-3, D.Sum())
	}
	if err := json.Unmarshal([]byte(`{"dividers":[0,1],"histo":[1,2]}`), D2); err == nil {
		Te.Error("Inconsistent JSON histogram was accepted")
	}
}

func TestBins(Te *testing.T) {
	D := NewData([]float64{0, 1, 2, 4}, nil)
	for _, v := range []struct {
		x   float64
		bin int
	}{{-0.1, -1}, {0, 0}, {0.5, 0}, {1, 1}, {3.99, 2}, {4, 2}, {4.01, -1}} {
		if b := D.Bin(v.x); b != v.bin {
			Te.Errorf("Value %f: expected bin %d got %d", v.x, v.bin, b)
		}
	}
	D.AddData(0.5, 3, 3, 3, 10)
	if D.Sum() != 4 {
		Te.Errorf("Expected 4 points got %f", D.Sum())
	}
	if ld := D.LogDensity(3); math.Abs(ld-math.Log(0.75/2)) > 1e-12 {
		Te.Errorf("Wrong log density %f", ld)
	}
	if !math.IsInf(D.LogDensity(1.5), -1) {
		Te.Error("An empty bin should have zero density")
	}
	D.Normalize()
	if math.Abs(D.Sum()-1) > 1e-12 {
		Te.Errorf("Normalized histogram adds to %f", D.Sum())
	}
	D.Normalize()
	if math.Abs(D.Sum()-1) > 1e-12 {
		Te.Error("Normalizing twice changed the histogram")
	}
}

func TestSample(Te *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	D := NewData([]float64{0, 1, 2, 3}, nil)
	D.SetBin(0, 1)
	D.SetBin(2, 3)
	var counts [3]int
	const n = 20000
	for i := 0; i < n; i++ {
		x := D.Sample(rnd)
		b := D.Bin(x)
		if b < 0 {
			Te.Fatalf("Sample %f outside the histogram", x)
		}
		counts[b]++
	}
	if counts[1] != 0 {
		Te.Errorf("Sampled an empty bin %d times", counts[1])
	}
	if f := float64(counts[2]) / n; math.Abs(f-0.75) > 0.02 {
		Te.Errorf("Expected a fraction of 0.75 in the last bin, got %f", f)
	}
	if !math.IsNaN(NewData([]float64{0, 1}, nil).Sample(rnd)) {
		Te.Error("An empty histogram should give NaN samples")
	}
}

func TestGrid(Te *testing.T) {
	G := NewGrid(Dividers(-180, 180, 36), Dividers(-180, 180, 36))
	G.Add(-60, -45, -60, -45, -120, 130, 180, 180)
	if G.Sum() != 4 {
		Te.Errorf("Expected 4 points, got %f", G.Sum())
	}
	//integrate the density
	var integral float64
	for x := -175.0; x < 180; x += 10 {
		for y := -175.0; y < 180; y += 10 {
			integral += G.Density(x, y) * 100
		}
	}
	if math.Abs(integral-1) > 1e-9 {
		Te.Errorf("The density integrates to %f", integral)
	}
	mx := G.MarginalX()
	if math.Abs(mx.Probability(mx.Bin(-60))-0.5) > 1e-12 {
		Te.Errorf("Wrong marginal probability %f", mx.Probability(mx.Bin(-60)))
	}
	my := G.MarginalY()
	if my.Sum() != 4 {
		Te.Errorf("Marginal has %f points", my.Sum())
	}
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		x, y := G.Sample(rnd)
		if G.Density(x, y) == 0 {
			Te.Fatalf("Sampled (%f,%f), which has zero density", x, y)
		}
	}
	j, err := json.Marshal(G)
	if err != nil {
		Te.Fatal(err)
	}
	G2 := new(Grid)
	if err := json.Unmarshal(j, G2); err != nil {
		Te.Fatal(err)
	}
	if G2.Density(-60, -45) != G.Density(-60, -45) {
		Te.Error("JSON round trip changed the grid")
	}
}
