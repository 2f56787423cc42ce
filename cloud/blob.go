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

package cloud

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"gocloud.dev/blob"
)

// Store holds output tables. It implements genfleet.ArtifactWriter.
type Store struct {
	bucket *blob.Bucket
	prefix string
}

// OpenStore opens the store at location, in the format accepted
// by OpenBucket.
func OpenStore(ctx context.Context, location string) (*Store, error) {
	b, prefix, err := OpenBucket(ctx, location)
	if err != nil {
		return nil, err
	}
	return &Store{bucket: b, prefix: prefix}, nil
}

// Write stores the output of write under name. Nothing is stored
// if write returns an error.
func (s *Store) Write(ctx context.Context, name string, write func(io.Writer) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	key := s.prefix + name
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{ContentType: "text/tab-separated-values"})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if err = write(w); err != nil {
		// Canceling the context before closing discards the blob.
		cancel()
		w.Close()
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}

// Open returns a reader for the table stored under name.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.prefix + name
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob %s: %v", key, err)
	}
	return r, nil
}

// List returns the sorted names of the tables whose names
// start with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	iter := s.bucket.List(&blob.ListOptions{Prefix: s.prefix + prefix})
	var o []string
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cloud: listing blobs: %v", err)
		}
		if obj.IsDir {
			continue
		}
		o = append(o, strings.TrimPrefix(obj.Key, s.prefix))
	}
	sort.Strings(o)
	return o, nil
}

// Close releases the resources held by the store.
func (s *Store) Close() error { return s.bucket.Close() }
