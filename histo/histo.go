/*
 * histo.go, part of slikmc.
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

//Package histo implements 1D and 2D histograms that can be used as empirical probability
//densities: they can be evaluated and sampled by inverse CDF.
package histo

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Data is a 1D histogram.
type Data struct {
	id         int
	normalized bool
	total      int
	dividers   []float64
	histo      []float64
}

//NewData returns a new histogram from the dividers and rawdata given.
//rawdata can be nil. In that case, an empty histogram is created.
//if an ID for the histogram is given, it will be set. If not, the ID will
//be set to -1.
func NewData(dividers []float64, rawdata []float64, ID ...int) *Data {
	d := &Data{id: -1, histo: make([]float64, len(dividers)-1)}
	d.dividers = append(d.dividers, dividers...)
	if rawdata != nil {
		d.ReHisto(d.dividers, rawdata)
	}
	if len(ID) > 0 {
		d.id = ID[0]
	}
	return d
}

//Dividers returns n+1 equally spaced dividers for n bins between min and max.
func Dividers(min, max float64, n int) []float64 {
	ret := make([]float64, n+1)
	return floats.Span(ret, min, max)
}

func (D *Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID         int       `json:"id"`
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}{
		ID:         D.id,
		Normalized: D.normalized,
		Total:      D.total,
		Dividers:   D.dividers,
		Histo:      D.histo,
	})
}

func (D *Data) UnmarshalJSON(b []byte) error {
	var a struct {
		ID         int       `json:"id"`
		Normalized bool      `json:"normalized"`
		Total      int       `json:"total"`
		Dividers   []float64 `json:"dividers"`
		Histo      []float64 `json:"histo"`
	}
	err := json.Unmarshal(b, &a)
	if err != nil {
		return err
	}
	if len(a.Dividers) != len(a.Histo)+1 {
		return fmt.Errorf("slikmc/histo.Data.UnmarshalJSON: %d dividers for %d bins", len(a.Dividers), len(a.Histo))
	}
	D.id = a.ID
	D.normalized = a.Normalized
	D.total = a.Total
	D.dividers = a.Dividers
	D.histo = a.Histo
	return nil
}

//ID returns the ID of the histogram
func (D *Data) ID() int {
	return D.id
}

//String returns the histogram as three lines of text: a header, the bin limits and the bins.
func (D *Data) String() string {
	ret := fmt.Sprintf("ID: %d, Normalized: %v, TotalData: %d\n", D.id, D.normalized, D.total)
	d := make([]string, 0, len(D.dividers)-1)
	h := make([]string, 0, len(D.dividers)-1)
	for i, v := range D.histo {
		d = append(d, fmt.Sprintf("%4.2f-%4.2f", D.dividers[i], D.dividers[i+1]))
		h = append(h, fmt.Sprintf("%9.3f", v))
	}
	return ret + fmt.Sprintf("%s\n%s", strings.Join(d, " "), strings.Join(h, " "))
}

//Bin returns the bin where x falls, or -1 if x is outside the histogram.
//Bins include their lower limit, the last one also includes its upper limit.
func (D *Data) Bin(x float64) int {
	n := len(D.dividers)
	if math.IsNaN(x) || x < D.dividers[0] || x > D.dividers[n-1] {
		return -1
	}
	i := sort.SearchFloat64s(D.dividers, x)
	if i < n && D.dividers[i] == x {
		return min(i, n-2)
	}
	return i - 1
}

//AddData adds the given data point(s) to the histogram. Points outside the histogram are ignored.
func (D *Data) AddData(point ...float64) {
	norm := D.normalized
	D.scaleTo(false)
	for _, v := range point {
		if i := D.Bin(v); i >= 0 {
			D.histo[i]++
			D.total++
		}
	}
	D.scaleTo(norm)
}

//SetBin sets the (un-normalized) weight of the bin i. Weights don't need to be integers.
func (D *Data) SetBin(i int, w float64) {
	D.scaleTo(false)
	D.histo[i] = w
	D.total = int(math.Round(floats.Sum(D.histo)))
}

//Normalize scales the bins so they add up to one. Adding data
//to a normalized histogram keeps it normalized.
func (D *Data) Normalize() {
	D.scaleTo(true)
}

func (D *Data) scaleTo(normalized bool) {
	if D.total <= 0 || D.normalized == normalized {
		return
	}
	f := float64(D.total)
	if normalized {
		f = 1 / f
	}
	D.normalized = normalized
	floats.Scale(f, D.histo)
}

//Sum returns the sum of all bins.
func (D *Data) Sum() float64 {
	return floats.Sum(D.histo)
}

//ReHisto rebuilds the histogram from the dividers and the raw data. Values outside the
//dividers are discarded.
func (D *Data) ReHisto(dividers, rawdata []float64) {
	if rawdata != nil {
		rawdata = append([]float64(nil), rawdata...)
		sort.Float64s(rawdata)
		//stat.Histogram panics on values out of the dividers.
		rawdata = rawdata[sort.SearchFloat64s(rawdata, dividers[0]):sort.SearchFloat64s(rawdata, dividers[len(dividers)-1])]
	}
	D.dividers = append(D.dividers[:0], dividers...)
	D.total = len(rawdata) //as this could have been modified
	D.normalized = false
	D.histo = stat.Histogram(nil, dividers, rawdata, nil)
}

//Probability returns the fraction of the weight of the histogram in the bin i.
func (D *Data) Probability(i int) float64 {
	s := D.Sum()
	if s <= 0 || i < 0 || i >= len(D.histo) {
		return 0
	}
	return D.histo[i] / s
}

//LogDensity returns the log of the probability density of the histogram at x, which is
//-Inf outside the histogram or in empty bins.
func (D *Data) LogDensity(x float64) float64 {
	i := D.Bin(x)
	if i < 0 {
		return math.Inf(-1)
	}
	return math.Log(D.Probability(i) / (D.dividers[i+1] - D.dividers[i]))
}

//Sample draws a value from the histogram: a bin is chosen by inverse CDF and a value uniformly
//within it. It returns NaN for an empty histogram.
func (D *Data) Sample(rnd *rand.Rand) float64 {
	i := pick(D.histo, rnd)
	if i < 0 {
		return math.NaN()
	}
	lo, hi := D.dividers[i], D.dividers[i+1]
	return lo + rnd.Float64()*(hi-lo)
}

//pick returns an index of w, chosen with probability proportional to its value.
func pick(w []float64, rnd *rand.Rand) int {
	if len(w) == 0 {
		return -1
	}
	cdf := floats.CumSum(make([]float64, len(w)), w)
	tot := cdf[len(cdf)-1]
	if tot <= 0 {
		return -1
	}
	u := rnd.Float64() * tot
	i := sort.Search(len(cdf), func(j int) bool { return cdf[j] > u })
	//empty bins at the end can't be chosen
	for i >= len(w) || w[i] == 0 {
		i--
	}
	return i
}
