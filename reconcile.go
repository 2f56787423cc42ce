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

	"github.com/sirupsen/logrus"
)

// Class is the outcome of matching a proposed project against
// existing projects.
type Class int

// These are the reconciliation classes.
const (
	New       Class = iota + 1 // no existing project at the plant uses the same technology and fuel
	Uprate                     // exactly one existing project matches
	Ambiguous                  // more than one existing project matches
)

func (c Class) String() string {
	switch c {
	case New:
		return "new"
	case Uprate:
		return "uprate"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// ParseClass converts "new" or "uprate" into a Class.
func ParseClass(s string) (Class, error) {
	switch s {
	case "new":
		return New, nil
	case "uprate":
		return Uprate, nil
	default:
		return 0, fmt.Errorf("genfleet: invalid reconciliation class %q", s)
	}
}

// Outcome is the classification of one proposed project.
type Outcome struct {
	Project *Generator
	Class   Class

	// Matches are the existing projects with the same plant,
	// prime mover, and energy source.
	Matches []*Generator
}

// Reconciliation partitions proposed projects. Every proposed project
// is in exactly one of New, Uprates, or Ambiguous.
type Reconciliation struct {
	New, Uprates, Ambiguous []*Outcome

	// AmbiguousAs is the bucket that ambiguous outcomes
	// are written to, either New or Uprate.
	AmbiguousAs Class
}

// Reconcile classifies each proposed project by the number of existing
// projects with the same plant, prime mover, and energy source: none
// makes it New, one makes it an Uprate, and more than one makes it
// Ambiguous. Ambiguous outcomes are added to r and placed in the
// ambiguousAs bucket by Buckets.
func Reconcile(existing, proposed []*Generator, ambiguousAs Class, r *Report) *Reconciliation {
	if ambiguousAs != New {
		ambiguousAs = Uprate
	}
	index := make(map[StatKey][]*Generator)
	for _, g := range existing {
		k := KeyOf(g)
		index[k] = append(index[k], g)
	}
	o := &Reconciliation{AmbiguousAs: ambiguousAs}
	for _, p := range proposed {
		matches := index[KeyOf(p)]
		out := &Outcome{Project: p, Matches: matches}
		switch len(matches) {
		case 0:
			out.Class = New
			o.New = append(o.New, out)
		case 1:
			out.Class = Uprate
			o.Uprates = append(o.Uprates, out)
		default:
			out.Class = Ambiguous
			o.Ambiguous = append(o.Ambiguous, out)
			r.Add(AmbiguousMatch, fmt.Sprintf("proposed project at plant %d (%s %s) matches %d existing projects",
				p.PlantCode, p.PrimeMover, p.EnergySource, len(matches)), logrus.Fields{
				"plant": p.PlantCode, "prime mover": p.PrimeMover,
				"energy source": p.EnergySource, "matches": len(matches),
			})
		}
	}
	r.log().WithFields(logrus.Fields{
		"new":       len(o.New),
		"uprates":   len(o.Uprates),
		"ambiguous": len(o.Ambiguous),
	}).Info("reconciled proposed projects")
	return o
}

// Buckets returns the projects to be written as new projects and
// as uprates, with ambiguous projects in the AmbiguousAs bucket.
func (r *Reconciliation) Buckets() (newProjects, uprates []*Generator) {
	for _, o := range r.New {
		newProjects = append(newProjects, o.Project)
	}
	for _, o := range r.Uprates {
		uprates = append(uprates, o.Project)
	}
	for _, o := range r.Ambiguous {
		if r.AmbiguousAs == New {
			newProjects = append(newProjects, o.Project)
		} else {
			uprates = append(uprates, o.Project)
		}
	}
	return
}
