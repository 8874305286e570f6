// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package slice

// Duplicated returns the first value that appears twice in s.
func Duplicated[T comparable](s []T) (v T, ok bool) {
	m := make(map[T]struct{}, len(s))
	for _, k := range s {
		if _, ok := m[k]; ok {
			return k, true
		}
		m[k] = struct{}{}
	}
	return
}

// Missing returns values of s1 that are absent from s2, in s1's order.
func Missing[T comparable](s1, s2 []T) []T {
	m := make(map[T]struct{}, len(s2))
	for _, k := range s2 {
		m[k] = struct{}{}
	}
	var res []T
	for _, k := range s1 {
		if _, ok := m[k]; !ok {
			res = append(res, k)
		}
	}
	return res
}

// Compare splits s against old into values kept by both, values only in s
// and values only in old.
func Compare[T comparable](s, old []T) (unchanged, added, removed []T) {
	added = Missing(s, old)
	removed = Missing(old, s)
	m := make(map[T]struct{}, len(added))
	for _, k := range added {
		m[k] = struct{}{}
	}
	for _, k := range s {
		if _, ok := m[k]; !ok {
			unchanged = append(unchanged, k)
		}
	}
	return
}
