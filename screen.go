/*
 * Copyright 2025 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package syncq

// screenSet is an unordered set of byte strings, process-local and never
// reflected into the shared region. Membership is exact byte equality.
//
// A screen set holds a handful of sender/type tags at most and is built
// once, right after Register, then only ever read from — a plain Go map
// already gives O(1) Get at that size; there is nothing here for a
// read-mostly-but-bulk-rebuilding container to buy back.
type screenSet struct {
	m map[string]struct{}
}

func newScreenSet() *screenSet {
	return &screenSet{m: make(map[string]struct{})}
}

func (s *screenSet) add(b []byte) {
	s.m[string(b)] = struct{}{}
}

// has reports whether b is in the set.
func (s *screenSet) has(b []byte) bool {
	_, ok := s.m[string(b)]
	return ok
}
