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
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// CountyState identifies a county by normalized name and postal
// state abbreviation.
type CountyState struct {
	County, State string
}

// NewCountyState normalizes county and state and returns the pair.
func NewCountyState(county, state string) CountyState {
	return CountyState{County: NormalizeCounty(county), State: NormalizeState(state)}
}

// Membership maps counties to the region they belong to.
type Membership map[CountyState]string

// Lookup returns the region that the given county belongs to.
func (m Membership) Lookup(county, state string) (string, bool) {
	r, ok := m[NewCountyState(county, state)]
	return r, ok
}

// AssignRegion returns the generators that belong to region. Generators
// whose NercRegion equals region are kept as they are. Generators with
// no NercRegion are located by county and state using m, and those that
// fall in region are returned as copies with NercRegion set. All other
// generators are dropped; unlocated generators are added to r.
// The input generators are not modified.
func AssignRegion(gens []*Generator, region string, m Membership, r *Report) []*Generator {
	var out []*Generator
	var explicit, inferred, unresolved int
	for _, g := range gens {
		switch g.NercRegion {
		case region:
			out = append(out, g)
			explicit++
		case "":
			reg, ok := m.Lookup(g.County, g.State)
			if !ok {
				unresolved++
				r.Add(UnresolvedRegion, fmt.Sprintf("plant %d (%s, %s) has no region and its county is not in the %s membership",
					g.PlantCode, g.County, g.State, region), logrus.Fields{
					"plant": g.PlantCode, "county": g.County, "state": g.State,
				})
				continue
			}
			if reg != region {
				continue
			}
			c := g.Clone()
			c.NercRegion = region
			out = append(out, c)
			inferred++
		}
	}
	r.log().WithFields(logrus.Fields{
		"region":     region,
		"explicit":   explicit,
		"inferred":   inferred,
		"unresolved": unresolved,
		"dropped":    len(gens) - len(out),
	}).Info("assigned generators to region")
	return out
}

// membershipHeader is the first line of a membership file.
const membershipHeader = "County\tState\tRegion"

// WriteMembership writes m to w as tab-delimited text, sorted by
// state and county.
func WriteMembership(w io.Writer, m Membership) error {
	keys := make([]CountyState, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].State != keys[j].State {
			return keys[i].State < keys[j].State
		}
		return keys[i].County < keys[j].County
	})
	b := bufio.NewWriter(w)
	fmt.Fprintln(b, membershipHeader)
	for _, k := range keys {
		fmt.Fprintf(b, "%s\t%s\t%s\n", k.County, k.State, m[k])
	}
	return b.Flush()
}

// ReadMembership reads a membership file written by WriteMembership.
func ReadMembership(r io.Reader) (Membership, error) {
	s := bufio.NewScanner(r)
	m := make(Membership)
	line := 0
	for s.Scan() {
		line++
		if line == 1 {
			if strings.TrimSpace(s.Text()) != membershipHeader {
				return nil, fmt.Errorf("genfleet: reading membership: unexpected header %q", s.Text())
			}
			continue
		}
		if strings.TrimSpace(s.Text()) == "" {
			continue
		}
		parts := strings.Split(s.Text(), "\t")
		if len(parts) != 3 {
			return nil, fmt.Errorf("genfleet: reading membership: line %d has %d columns", line, len(parts))
		}
		m[NewCountyState(parts[0], parts[1])] = parts[2]
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("genfleet: reading membership: %v", err)
	}
	if line == 0 {
		return nil, fmt.Errorf("genfleet: reading membership: empty file")
	}
	return m, nil
}
