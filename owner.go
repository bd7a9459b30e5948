// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package unarchive

import (
	"os/user"
	"strconv"
)

// ownerLookup resolves user and group names with the system user database and
// caches the results.
type ownerLookup struct {
	users  map[string]int
	groups map[string]int
}

// newOwnerLookup returns an empty lookup.
func newOwnerLookup() *ownerLookup {
	return &ownerLookup{users: map[string]int{}, groups: map[string]int{}}
}

// uid returns the id of the user name, or fallback if name is empty or unknown.
func (o *ownerLookup) uid(name string, fallback int) int {
	return o.lookup(o.users, name, fallback, func(n string) (string, error) {
		u, err := user.Lookup(n)
		if err != nil {
			return "", err
		}
		return u.Uid, nil
	})
}

// gid returns the id of the group name, or fallback if name is empty or unknown.
func (o *ownerLookup) gid(name string, fallback int) int {
	return o.lookup(o.groups, name, fallback, func(n string) (string, error) {
		g, err := user.LookupGroup(n)
		if err != nil {
			return "", err
		}
		return g.Gid, nil
	})
}

// lookup resolves name with find, caching hits and misses.
func (o *ownerLookup) lookup(cache map[string]int, name string, fallback int, find func(string) (string, error)) int {
	if name == "" {
		return fallback
	}
	if id, ok := cache[name]; ok {
		if id < 0 {
			return fallback
		}
		return id
	}
	id := -1
	if s, err := find(name); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			id = n
		}
	}
	cache[name] = id
	if id < 0 {
		return fallback
	}
	return id
}
