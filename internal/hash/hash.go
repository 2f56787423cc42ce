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

// Package hash creates stable, file-name-safe keys for cached results.
package hash

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"regexp"

	"github.com/davecgh/go-spew/spew"
)

// keyLength is the number of hex characters of the hash kept in a key.
const keyLength = 12

var unsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Key returns prefix followed by a short hash of object. Characters in
// prefix that are not safe in file names are replaced by underscores.
func Key(prefix string, object interface{}) string {
	return unsafe.ReplaceAllString(prefix, "_") + "_" + Hash(object)[:keyLength]
}

// Hash returns the hex-encoded 128-bit FNV hash of object.
func Hash(object interface{}) string {
	h := fnv.New128a()
	if err := gob.NewEncoder(h).Encode(object); err != nil {
		// gob can't encode some values (e.g., NaN in maps or
		// unexported fields), so fall back to spew.
		h.Reset()
		printer := spew.ConfigState{
			Indent:                  " ",
			SortKeys:                true,
			DisableMethods:          true,
			SpewKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		printer.Fprintf(h, "%#v", object)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
