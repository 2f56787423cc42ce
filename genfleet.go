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

// Package genfleet reconciles the annual EIA-860 generator inventory with
// the EIA-923 monthly fuel and generation survey and turns the result into
// per-plant records suitable for capacity-expansion modeling.
//
// A run covers one annual snapshot. Raw units are aggregated into
// projects, restricted to a NERC region, enriched with heat rates and hydro
// capacity factors, split into new builds and uprates, and finally collapsed
// into one capacity-weighted record per plant, prime mover and energy source.
package genfleet

// Version gives the version number.
const Version = "0.3.0"
