/*
Copyright © 2019 the genfleet authors.
This file is part of genfleet.

genfleet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

genfleet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with genfleet.  If not, see <http://www.gnu.org/licenses/>.
*/

package genfleet

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotHeatRates saves histograms of heat rates before and after
// outlier correction to filename. The image format is determined by
// the file extension.
func PlotHeatRates(filename string, measured, corrected []float64) error {
	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("genfleet: plotting heat rates: %v", err)
	}
	p.Title.Text = "Thermal heat rates"
	p.X.Label.Text = "Heat rate (MMBtu/MWh)"
	p.Y.Label.Text = "Projects"

	for _, s := range []struct {
		name   string
		values []float64
		color  color.Color
	}{
		{"measured", measured, color.RGBA{R: 200, G: 80, B: 80, A: 120}},
		{"corrected", corrected, color.RGBA{R: 80, G: 80, B: 200, A: 120}},
	} {
		if len(s.values) == 0 {
			continue
		}
		h, err := plotter.NewHist(plotter.Values(s.values), 50)
		if err != nil {
			return fmt.Errorf("genfleet: plotting heat rates: %v", err)
		}
		h.FillColor = s.color
		p.Add(h)
		p.Legend.Add(s.name, h)
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("genfleet: saving heat rate plot: %v", err)
	}
	return nil
}
