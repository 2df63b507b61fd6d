/*
 * ramachandran.go, part of slikmc
 *
 * Copyright 2026 The slikmc authors
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
*/

//Package chemplot produces Ramachandran plots of sampled conformations and of the priors.
package chemplot

import (
	"fmt"
	"image/color"
	"math"

	chem "github.com/loopkin/slikmc"
	"github.com/loopkin/slikmc/histo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func basicRamaPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Phi"
	p.Y.Label.Text = "Psi"
	p.X.Min = -180
	p.X.Max = 180
	p.Y.Min = -180
	p.Y.Max = 180
	p.Add(plotter.NewGrid())
	return p
}

//points returns the residues of data for which both dihedrals are defined, as plot points,
//and their indexes in data.
func points(data []chem.RamaSet) (plotter.XYs, []int) {
	pts := make(plotter.XYs, 0, len(data))
	idx := make([]int, 0, len(data))
	for i, v := range data {
		if !v.PhiOK || !v.PsiOK {
			continue
		}
		pts = append(pts, plotter.XY{X: v.Phi, Y: v.Psi})
		idx = append(idx, i)
	}
	return pts, idx
}

func isIn(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//RamaPlot produces a png plot with the dihedrals in data, named plotname.png. Residues with an undefined
//phi or psi are left out. The residues with indexes (in data) in tag, at most 4, are highlighted.
func RamaPlot(data []chem.RamaSet, tag []int, title, plotname string) error {
	if data == nil {
		return chem.NewError(chem.ErrNilData, false, "RamaPlot")
	}
	p := basicRamaPlot(title)
	pts, idx := points(data)
	var tagged int
	for k, pt := range pts {
		s, err := plotter.NewScatter(plotter.XYs{pt})
		if err != nil {
			return chem.ErrDecorate(err, "RamaPlot")
		}
		r, g, b := colors(k, len(pts))
		s.GlyphStyle.Color = color.RGBA{R: r, B: b, G: g, A: 255}
		if isIn(tag, idx[k]) {
			if s.GlyphStyle.Shape, err = getShape(tagged); err != nil {
				return chem.ErrDecorate(err, "RamaPlot")
			}
			s.GlyphStyle.Radius = vg.Points(4)
			tagged++
		}
		p.Add(s)
	}
	return chem.ErrDecorate(p.Save(4*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname)), "RamaPlot")
}

//RamaPlotParts plots several sets of dihedrals, for instance, several snapshots of a
//sampling run, each with its own color.
func RamaPlotParts(data [][]chem.RamaSet, title, plotname string) error {
	if data == nil {
		return chem.NewError(chem.ErrNilData, false, "RamaPlotParts")
	}
	p := basicRamaPlot(title)
	for key, val := range data {
		pts, _ := points(val)
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return chem.ErrDecorate(err, "RamaPlotParts")
		}
		r, g, b := colors(key, len(data))
		s.GlyphStyle.Color = color.RGBA{R: r, B: b, G: g, A: 255}
		p.Add(s)
	}
	return chem.ErrDecorate(p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname)), "RamaPlotParts")
}

//gridXYZ exposes a 2D histogram as a plotter.GridXYZ
type gridXYZ struct {
	g          *histo.Grid
	xdiv, ydiv []float64
	log        bool
}

func (g gridXYZ) Dims() (int, int) { return g.g.Dims() }

func (g gridXYZ) X(c int) float64 { return (g.xdiv[c] + g.xdiv[c+1]) / 2 }

func (g gridXYZ) Y(r int) float64 { return (g.ydiv[r] + g.ydiv[r+1]) / 2 }

func (g gridXYZ) Z(c, r int) float64 {
	if !g.log {
		return g.g.At(c, r)
	}
	return math.Log(g.g.At(c, r))
}

//PriorMap produces a png heat map of a Ramachandran prior or histogram. If logscale
//is true, the log of the weights is plotted. Empty cells must not be present in that case.
func PriorMap(G *histo.Grid, logscale bool, title, plotname string) error {
	if G == nil {
		return chem.NewError(chem.ErrNilData, false, "PriorMap")
	}
	xd, yd := G.Dividers()
	p := basicRamaPlot(title)
	p.Add(plotter.NewHeatMap(gridXYZ{g: G, xdiv: xd, ydiv: yd, log: logscale}, palette.Heat(32, 1)))
	return chem.ErrDecorate(p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname)), "PriorMap")
}

func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default: //case 5
		r, g, b = v, p, q
	}
	return uint8(r * conversion), uint8(g * conversion), uint8(b * conversion)
}

//colors returns a color for the keyth of steps elements, going from red to purple.
func colors(key, steps int) (r, g, b uint8) {
	if steps < 1 {
		steps = 1
	}
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return iHVS2RGB(h, 1, 1)
}

func getShape(tagged int) (draw.GlyphDrawer, error) {
	switch tagged {
	case 0:
		return draw.PyramidGlyph{}, nil
	case 1:
		return draw.CircleGlyph{}, nil
	case 2:
		return draw.SquareGlyph{}, nil
	case 3:
		return draw.CrossGlyph{}, nil
	default:
		return draw.RingGlyph{}, fmt.Errorf("Maximun number of taggable residues is 4")
	}
}
