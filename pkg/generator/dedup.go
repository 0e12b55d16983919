/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dedup.go
Description: Shared deduplication set for parallel program generation. Workers check a
program's canonical string before converting it and insert it afterwards; the two steps are
separate calls, so two workers may both accept the same program under contention.
*/

package generator

import "sync"

// DedupSet is a thread-safe set of canonical program strings
type DedupSet struct {
	keys map[string]struct{}
	mu   sync.RWMutex
}

// NewDedupSet creates an empty set
func NewDedupSet() *DedupSet {
	return &DedupSet{keys: make(map[string]struct{})}
}

// Contains reports whether key has been inserted
func (d *DedupSet) Contains(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.keys[key]
	return ok
}

// Insert adds key and reports whether it was absent
func (d *DedupSet) Insert(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.keys[key]; ok {
		return false
	}
	d.keys[key] = struct{}{}
	return true
}

// Len returns the number of keys
func (d *DedupSet) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.keys)
}
