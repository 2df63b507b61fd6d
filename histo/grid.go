package histo

import (
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

//Grid is a 2D histogram, such as a Ramachandran plot.
type Grid struct {
	xdiv, ydiv []float64
	w          []float64 //row-major, one row per x bin
}

//NewGrid returns an empty 2D histogram with the given dividers for each axis.
func NewGrid(xdividers, ydividers []float64) *Grid {
	if len(xdividers) < 2 || len(ydividers) < 2 {
		panic("slikmc/histo.NewGrid: at least 2 dividers per axis are needed")
	}
	G := &Grid{xdiv: append([]float64(nil), xdividers...), ydiv: append([]float64(nil), ydividers...)}
	G.w = make([]float64, (len(xdividers)-1)*(len(ydividers)-1))
	return G
}

//Dims returns the number of bins along x and y.
func (G *Grid) Dims() (int, int) {
	return len(G.xdiv) - 1, len(G.ydiv) - 1
}

//Dividers returns copies of the dividers of the x and y axes.
func (G *Grid) Dividers() ([]float64, []float64) {
	return append([]float64(nil), G.xdiv...), append([]float64(nil), G.ydiv...)
}

func (G *Grid) rc2i(r, c int) int {
	_, cols := G.Dims()
	return r*cols + c
}

//Cell returns the bins where the point (x,y) falls, and false if it is outside the grid.
func (G *Grid) Cell(x, y float64) (int, int, bool) {
	r := (&Data{dividers: G.xdiv}).Bin(x)
	c := (&Data{dividers: G.ydiv}).Bin(y)
	return r, c, r >= 0 && c >= 0
}

//Add adds points to the grid. Each point is a pair x, y, so the number of values
//must be even. Points outside the grid are ignored.
func (G *Grid) Add(xy ...float64) {
	if len(xy)%2 != 0 {
		panic("slikmc/histo.Grid.Add: odd number of coordinates")
	}
	for i := 0; i < len(xy); i += 2 {
		if r, c, ok := G.Cell(xy[i], xy[i+1]); ok {
			G.w[G.rc2i(r, c)]++
		}
	}
}

//Set sets the weight of the cell r, c
func (G *Grid) Set(r, c int, w float64) {
	G.w[G.rc2i(r, c)] = w
}

//At returns the weight of the cell r, c
func (G *Grid) At(r, c int) float64 {
	return G.w[G.rc2i(r, c)]
}

//Sum returns the total weight of the grid.
func (G *Grid) Sum() float64 {
	return floats.Sum(G.w)
}

//AddAll adds w to the weight of every cell, usually as a pseudocount.
func (G *Grid) AddAll(w float64) {
	floats.AddConst(w, G.w)
}

func (G *Grid) area(r, c int) float64 {
	return (G.xdiv[r+1] - G.xdiv[r]) * (G.ydiv[c+1] - G.ydiv[c])
}

//Density returns the probability density at (x,y), which is 0 outside the grid.
func (G *Grid) Density(x, y float64) float64 {
	r, c, ok := G.Cell(x, y)
	s := G.Sum()
	if !ok || s <= 0 {
		return 0
	}
	return G.At(r, c) / s / G.area(r, c)
}

//LogDensity returns the log of the probability density at (x,y).
func (G *Grid) LogDensity(x, y float64) float64 {
	return math.Log(G.Density(x, y))
}

//MarginalX returns the histogram of the x values, with the y axis integrated out.
func (G *Grid) MarginalX() *Data {
	rows, cols := G.Dims()
	d := NewData(G.xdiv, nil)
	for r := 0; r < rows; r++ {
		d.histo[r] = floats.Sum(G.w[r*cols : (r+1)*cols])
	}
	d.total = int(math.Round(d.Sum()))
	return d
}

//MarginalY returns the histogram of the y values, with the x axis integrated out.
func (G *Grid) MarginalY() *Data {
	rows, cols := G.Dims()
	d := NewData(G.ydiv, nil)
	for r := 0; r < rows; r++ {
		floats.Add(d.histo, G.w[r*cols:(r+1)*cols])
	}
	d.total = int(math.Round(d.Sum()))
	return d
}

//Sample draws a point from the grid: a cell by inverse CDF, and a point uniformly within it.
//It returns NaNs for an empty grid.
func (G *Grid) Sample(rnd *rand.Rand) (float64, float64) {
	i := pick(G.w, rnd)
	if i < 0 {
		return math.NaN(), math.NaN()
	}
	_, cols := G.Dims()
	r, c := i/cols, i%cols
	x := G.xdiv[r] + rnd.Float64()*(G.xdiv[r+1]-G.xdiv[r])
	y := G.ydiv[c] + rnd.Float64()*(G.ydiv[c+1]-G.ydiv[c])
	return x, y
}

type jsonGrid struct {
	XDividers []float64 `json:"xdividers"`
	YDividers []float64 `json:"ydividers"`
	Weights   []float64 `json:"weights"`
}

func (G *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonGrid{XDividers: G.xdiv, YDividers: G.ydiv, Weights: G.w})
}

func (G *Grid) UnmarshalJSON(b []byte) error {
	var a jsonGrid
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a.XDividers) < 2 || len(a.YDividers) < 2 || len(a.Weights) != (len(a.XDividers)-1)*(len(a.YDividers)-1) {
		return fmt.Errorf("slikmc/histo.Grid.UnmarshalJSON: %d weights for %d x %d dividers", len(a.Weights), len(a.XDividers), len(a.YDividers))
	}
	G.xdiv, G.ydiv, G.w = a.XDividers, a.YDividers, a.Weights
	return nil
}
