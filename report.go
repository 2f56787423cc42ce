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
	"sort"

	"github.com/sirupsen/logrus"
)

// IssueKind classifies non-fatal data problems found during a run.
type IssueKind int

// These are the kinds of issues that are collected rather than
// causing a run to fail.
const (
	SchemaMismatch IssueKind = iota
	UnmappedFuel
	AmbiguousMatch
	UnresolvedRegion
	MissingHeatRate
	CrossSourceMismatch
	numIssueKinds
)

var issueKindNames = [numIssueKinds]string{
	"schema mismatch",
	"unmapped fuel",
	"ambiguous match",
	"unresolved region",
	"missing heat rate",
	"cross-source mismatch",
}

func (k IssueKind) String() string {
	if k < 0 || k >= numIssueKinds {
		return fmt.Sprintf("IssueKind(%d)", int(k))
	}
	return issueKindNames[k]
}

// maxExamples is the number of example messages kept per issue kind.
const maxExamples = 10

// Report collects non-fatal issues for one run. Each issue is counted,
// the first few are kept as examples, and every issue is logged
// as a warning.
type Report struct {
	// Log receives a warning for each issue. If nil, the
	// standard logger is used.
	Log logrus.FieldLogger

	counts   [numIssueKinds]int
	examples [numIssueKinds][]string
}

// NewReport returns a report that logs to log.
func NewReport(log logrus.FieldLogger) *Report {
	return &Report{Log: log}
}

func (r *Report) log() logrus.FieldLogger {
	if r == nil || r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

// Add records an issue of kind k. fields are attached to the log entry.
func (r *Report) Add(k IssueKind, msg string, fields logrus.Fields) {
	if r == nil {
		return
	}
	r.counts[k]++
	if len(r.examples[k]) < maxExamples {
		r.examples[k] = append(r.examples[k], msg)
	}
	r.log().WithFields(fields).WithField("issue", k.String()).Warn(msg)
}

// Count returns the number of issues of kind k.
func (r *Report) Count(k IssueKind) int {
	if r == nil {
		return 0
	}
	return r.counts[k]
}

// Examples returns up to ten example messages for issue kind k.
func (r *Report) Examples(k IssueKind) []string {
	if r == nil {
		return nil
	}
	return r.examples[k]
}

// Summarize logs the number of issues of each kind that occurred.
func (r *Report) Summarize() {
	if r == nil {
		return
	}
	f := make(logrus.Fields)
	for k := IssueKind(0); k < numIssueKinds; k++ {
		if r.counts[k] > 0 {
			f[k.String()] = r.counts[k]
		}
	}
	r.log().WithFields(f).Info("issue summary")
}

// countBy returns the keys of m sorted by descending count.
func countBy(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
