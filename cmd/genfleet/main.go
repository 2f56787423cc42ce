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

// Command genfleet is a command-line interface for building generator
// fleet tables from the EIA-860 and EIA-923 surveys.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/genfleet/internal/cmd"
)

func main() {
	if err := cmd.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
