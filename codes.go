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
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// thermalPrimeMovers are the prime movers that burn fuel, for which
// heat rates are computed.
var thermalPrimeMovers = map[string]bool{
	"ST": true, // steam turbine
	"GT": true, // combustion gas turbine
	"IC": true, // internal combustion engine
	"CA": true, // combined cycle steam part
	"CT": true, // combined cycle combustion turbine part
	"CS": true, // combined cycle single shaft
	"CC": true, // combined cycle total unit
}

// coalCodes are the EIA energy source codes for the different coal ranks.
var coalCodes = map[string]bool{
	"ANT": true, "BIT": true, "LIG": true, "SGC": true,
	"SUB": true, "WC": true, "RC": true,
}

// FoldCoal returns "COAL" for any coal rank and code otherwise.
func FoldCoal(code string) string {
	if coalCodes[code] {
		return "COAL"
	}
	return code
}

// These are the fuel categories that energy source codes map to.
const (
	Coal           = "Coal"
	Gas            = "Gas"
	Oil            = "Oil"
	Nuclear        = "Nuclear"
	Geothermal     = "Geothermal"
	Solar          = "Solar"
	Wind           = "Wind"
	Hydro          = "Hydro"
	Biomass        = "Biomass"
	Storage        = "Storage"
	PurchasedSteam = "PurchasedSteam"
	WasteHeat      = "WasteHeat"
	OtherFuel      = "Other"
)

// fuelCategories maps EIA-860 energy source codes to fuel categories.
var fuelCategories = map[string]string{
	"COAL": Coal, "PC": Oil, "DFO": Oil, "JF": Oil, "KER": Oil, "RFO": Oil, "WO": Oil,
	"NG": Gas, "BFG": Gas, "OG": Gas, "PG": Gas, "SGP": Gas, "LFG": Biomass,
	"NUC": Nuclear, "GEO": Geothermal, "SUN": Solar, "WND": Wind, "WAT": Hydro,
	"AB": Biomass, "MSW": Biomass, "MSB": Biomass, "MSN": Biomass, "OBS": Biomass,
	"WDS": Biomass, "OBL": Biomass, "SLW": Biomass, "BLQ": Biomass, "WDL": Biomass,
	"OBG": Biomass, "MWH": Storage, "PUR": PurchasedSteam, "WH": WasteHeat,
	"TDF": OtherFuel, "OTH": OtherFuel, "H2": OtherFuel,
}

// FuelCategory returns the category of an energy source code and whether
// the code is known.
func FuelCategory(code string) (string, bool) {
	c, ok := fuelCategories[FoldCoal(code)]
	return c, ok
}

// heatRateFloor returns the lowest plausible heat rate (MMBtu/MWh) for
// fuel. Lower values indicate reporting errors.
func heatRateFloor(fuel string) float64 {
	if FoldCoal(fuel) == "COAL" {
		return 8.607
	}
	return 6.711
}

// countyMisspellings maps county names as misspelled in the EIA-860
// plant file to the spelling used in census geometry.
var countyMisspellings = map[string]string{
	"Claveras": "Calaveras",
}

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeCounty puts a county name into the form used as a membership
// key: punctuation removed, whitespace collapsed, title case, and without
// the trailing "County" or "Parish".
func NormalizeCounty(name string) string {
	name = punctuation.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespace.ReplaceAllString(name, " "))
	name = cases.Title(language.English).String(strings.ToLower(name))
	for _, suffix := range []string{" County", " Parish", " Borough"} {
		name = strings.TrimSuffix(name, suffix)
	}
	if fixed, ok := countyMisspellings[name]; ok {
		return fixed
	}
	return name
}

// NormalizeState returns the two-letter postal abbreviation for a state
// given as an abbreviation, a full name, or a two-digit FIPS code.
// Unrecognized values are returned upper-cased.
func NormalizeState(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		s = "0" + s
	}
	if abbr, ok := stateFIPS[s]; ok {
		return abbr
	}
	if abbr, ok := stateNames[strings.ToLower(s)]; ok {
		return abbr
	}
	return strings.ToUpper(s)
}

var stateFIPS = map[string]string{
	"01": "AL", "02": "AK", "04": "AZ", "05": "AR", "06": "CA", "08": "CO",
	"09": "CT", "10": "DE", "11": "DC", "12": "FL", "13": "GA", "15": "HI",
	"16": "ID", "17": "IL", "18": "IN", "19": "IA", "20": "KS", "21": "KY",
	"22": "LA", "23": "ME", "24": "MD", "25": "MA", "26": "MI", "27": "MN",
	"28": "MS", "29": "MO", "30": "MT", "31": "NE", "32": "NV", "33": "NH",
	"34": "NJ", "35": "NM", "36": "NY", "37": "NC", "38": "ND", "39": "OH",
	"40": "OK", "41": "OR", "42": "PA", "44": "RI", "45": "SC", "46": "SD",
	"47": "TN", "48": "TX", "49": "UT", "50": "VT", "51": "VA", "53": "WA",
	"54": "WV", "55": "WI", "56": "WY", "72": "PR",
}

var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA", "kansas": "KS",
	"kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS",
	"missouri": "MO", "montana": "MT", "nebraska": "NE", "nevada": "NV",
	"new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM", "new york": "NY",
	"north carolina": "NC", "north dakota": "ND", "ohio": "OH", "oklahoma": "OK",
	"oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
	"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
	"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY", "puerto rico": "PR",
}
