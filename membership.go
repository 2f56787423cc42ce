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
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
	"github.com/ctessum/requestcache"
	goshp "github.com/jonas-p/go-shp"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/genfleet/internal/hash"
)

// DefaultAreaThreshold is the fraction of a county's area that must
// lie within a region for the county to belong to it.
const DefaultAreaThreshold = 0.5

// MembershipCache determines which counties belong to a region by
// intersecting county and region boundaries. Results are kept in memory
// and, if Dir is set, in a tab-delimited file in Dir so that the
// intersection only needs to be computed once per region.
// Concurrent computation of the same region in separate processes
// is not supported.
type MembershipCache struct {
	// CountyShapefile holds county boundaries. Its attributes
	// CountyNameField and CountyStateField hold the county name and the
	// state (as a postal code, name, or FIPS code). The defaults are
	// "NAME" and "STATEFP", as in the census TIGER files.
	CountyShapefile                   string
	CountyNameField, CountyStateField string

	// RegionShapefile holds region boundaries, with the region
	// identifier in attribute RegionNameField (default "NAME").
	RegionShapefile string
	RegionNameField string

	// Threshold is the minimum overlap fraction. If zero,
	// DefaultAreaThreshold is used.
	Threshold float64

	// Dir is the directory membership files are stored in.
	Dir string

	// QADir, if set, is a directory where a shapefile of the counties
	// selected for each region is written.
	QADir string

	Log logrus.FieldLogger

	loadOnce sync.Once
	cache    *requestcache.Cache
	initErr  error
}

// MembershipFileExtension is the extension of membership cache files.
const MembershipFileExtension = ".tab"

func init() {
	// requestcache.FileExtension is global, so every disk-backed
	// request cache in the program uses this extension.
	requestcache.FileExtension = MembershipFileExtension
}

func (mc *MembershipCache) log() logrus.FieldLogger {
	if mc.Log == nil {
		return logrus.StandardLogger()
	}
	return mc.Log
}

func (mc *MembershipCache) threshold() float64 {
	if mc.Threshold == 0 {
		return DefaultAreaThreshold
	}
	return mc.Threshold
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Key returns the cache key for region, which is also the base name
// of its membership file.
func (mc *MembershipCache) Key(region string) string {
	return hash.Key(region+"_counties", struct {
		Counties, CountyName, CountyState string
		Regions, RegionName               string
		Threshold                         float64
	}{
		Counties:    mc.CountyShapefile,
		CountyName:  orDefault(mc.CountyNameField, "NAME"),
		CountyState: orDefault(mc.CountyStateField, "STATEFP"),
		Regions:     mc.RegionShapefile,
		RegionName:  orDefault(mc.RegionNameField, "NAME"),
		Threshold:   mc.threshold(),
	})
}

// Get returns the membership of region, computing it if it has
// not been computed before.
func (mc *MembershipCache) Get(ctx context.Context, region string) (Membership, error) {
	mc.loadOnce.Do(func() {
		funcs := []requestcache.CacheFunc{requestcache.Deduplicate(), requestcache.Memory(10)}
		if mc.Dir != "" {
			if err := os.MkdirAll(mc.Dir, os.ModePerm); err != nil {
				mc.initErr = fmt.Errorf("genfleet: creating membership directory: %v", err)
				return
			}
			funcs = append(funcs, requestcache.Disk(mc.Dir, marshalMembership, unmarshalMembership))
		}
		mc.cache = requestcache.NewCache(mc.compute, 1, funcs...)
	})
	if mc.initErr != nil {
		return nil, mc.initErr
	}
	r := mc.cache.NewRequest(ctx, region, mc.Key(region))
	mI, err := r.Result()
	if err != nil {
		return nil, err
	}
	return mI.(Membership), nil
}

func marshalMembership(data interface{}) ([]byte, error) {
	if p, ok := data.(*interface{}); ok {
		data = *p
	}
	m, ok := data.(Membership)
	if !ok {
		return nil, fmt.Errorf("genfleet: can't marshal %T as membership", data)
	}
	b := new(bytes.Buffer)
	if err := WriteMembership(b, m); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func unmarshalMembership(b []byte) (interface{}, error) {
	return ReadMembership(bytes.NewReader(b))
}

// compute intersects every county with the boundary of the requested region.
func (mc *MembershipCache) compute(ctx context.Context, req interface{}) (interface{}, error) {
	region := req.(string)
	mc.log().WithField("region", region).Info("computing county membership")

	d, err := shp.NewDecoder(mc.CountyShapefile)
	if err != nil {
		return nil, fmt.Errorf("genfleet: opening county shapefile: %v", err)
	}
	defer d.Close()
	countySR, _ := d.SR() // nil if there is no .prj file

	regions, err := mc.regionIndex(region, countySR)
	if err != nil {
		return nil, err
	}

	nameField := orDefault(mc.CountyNameField, "NAME")
	stateField := orDefault(mc.CountyStateField, "STATEFP")
	threshold := mc.threshold()

	m := make(Membership)
	var selected []selectedCounty
	for {
		g, fields, more := d.DecodeRowFields(nameField, stateField)
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("genfleet: reading county shapefile: %v", err)
		}
		if !more {
			break
		}
		county, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("genfleet: county %s has non-polygon geometry %T", fields[nameField], g)
		}
		frac := overlapFraction(county, regions)
		if frac < threshold {
			continue
		}
		cs := NewCountyState(trimAttribute(fields[nameField]), trimAttribute(fields[stateField]))
		m[cs] = region
		selected = append(selected, selectedCounty{CountyState: cs, Polygonal: county, frac: frac})
	}
	mc.log().WithFields(logrus.Fields{
		"region":   region,
		"counties": len(m),
	}).Info("computed county membership")

	if mc.QADir != "" {
		if err := writeSelectedCounties(filepath.Join(mc.QADir, region+"_counties.shp"), selected); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// regionIndex returns a spatial index of the polygons making up region,
// transformed to spatial reference sr if both shapefiles have one.
func (mc *MembershipCache) regionIndex(region string, sr *proj.SR) (*rtree.Rtree, error) {
	d, err := shp.NewDecoder(mc.RegionShapefile)
	if err != nil {
		return nil, fmt.Errorf("genfleet: opening region shapefile: %v", err)
	}
	defer d.Close()

	var trans proj.Transformer
	if regionSR, err := d.SR(); err == nil && sr != nil {
		if trans, err = regionSR.NewTransform(sr); err != nil {
			return nil, fmt.Errorf("genfleet: region shapefile projection: %v", err)
		}
	}

	nameField := orDefault(mc.RegionNameField, "NAME")
	index := rtree.NewTree(25, 50)
	var n int
	for {
		g, fields, more := d.DecodeRowFields(nameField)
		if err := d.Error(); err != nil {
			return nil, fmt.Errorf("genfleet: reading region shapefile: %v", err)
		}
		if !more {
			break
		}
		if !strings.EqualFold(trimAttribute(fields[nameField]), region) {
			continue
		}
		if trans != nil {
			if g, err = g.Transform(trans); err != nil {
				return nil, fmt.Errorf("genfleet: transforming region %s: %v", region, err)
			}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("genfleet: region %s has non-polygon geometry %T", region, g)
		}
		index.Insert(p)
		n++
	}
	if n == 0 {
		return nil, fmt.Errorf("genfleet: region %s not found in %s", region, mc.RegionShapefile)
	}
	return index, nil
}

// trimAttribute removes the padding from a shapefile attribute.
func trimAttribute(s string) string {
	return strings.Trim(s, " \x00")
}

// overlapFraction returns the fraction of county's area that lies
// within the polygons in regions.
func overlapFraction(county geom.Polygonal, regions *rtree.Rtree) float64 {
	a := county.Area()
	if a == 0 {
		return 0
	}
	var overlap float64
	for _, rI := range regions.SearchIntersect(county.Bounds()) {
		isect := county.Intersection(rI.(geom.Polygonal))
		if isect != nil {
			overlap += isect.Area()
		}
	}
	return math.Min(overlap/a, 1)
}

type selectedCounty struct {
	CountyState
	geom.Polygonal
	frac float64
}

// writeSelectedCounties writes the counties selected for a region
// to a shapefile for visual checking.
func writeSelectedCounties(filename string, counties []selectedCounty) error {
	if err := os.MkdirAll(filepath.Dir(filename), os.ModePerm); err != nil {
		return fmt.Errorf("genfleet: writing selected counties: %v", err)
	}
	e, err := shp.NewEncoderFromFields(filename, goshp.POLYGON,
		goshp.StringField("County", 50),
		goshp.StringField("State", 2),
		goshp.FloatField("Overlap", 10, 4),
	)
	if err != nil {
		return fmt.Errorf("genfleet: writing selected counties: %v", err)
	}
	defer e.Close()
	for _, c := range counties {
		var p geom.Polygon
		for _, pp := range c.Polygons() {
			p = append(p, pp...)
		}
		if err := e.EncodeFields(p, c.County, c.State, c.frac); err != nil {
			return fmt.Errorf("genfleet: writing selected counties: %v", err)
		}
	}
	return nil
}
