// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package search

import (
	"sort"
	"strings"
	"sync"
)

// EntryKind tells autocomplete what an indexed term refers to.
type EntryKind string

const (
	EntryPlace    EntryKind = "place"
	EntryCategory EntryKind = "category"
)

// Completion is one autocomplete result.
type Completion struct {
	Value string    `json:"value"`
	Kind  EntryKind `json:"kind"`
	Count int       `json:"count"`
}

type trieNode struct {
	children map[rune]*trieNode
	isEnd    bool
	value    string // original spelling of the term ending here
	kind     EntryKind
	count    int // how many times the term was inserted
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[rune]*trieNode)}
}

// Index is a case-insensitive prefix tree over place names and category
// names. Lookups cost O(len(prefix)) plus the size of the
// matching subtree. Index is safe for concurrent use.
type Index struct {
	mu   sync.RWMutex
	root *trieNode
	size int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{root: newTrieNode()}
}

// Insert adds term to the index. Inserting an existing term bumps its
// count, which ranks it higher in completions. Returns true for new terms.
func (idx *Index) Insert(term string, kind EntryKind) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	node := idx.root
	for _, ch := range strings.ToLower(term) {
		if node.children[ch] == nil {
			node.children[ch] = newTrieNode()
		}
		node = node.children[ch]
	}

	isNew := !node.isEnd
	node.isEnd = true
	node.value = term
	node.kind = kind
	node.count++
	if isNew {
		idx.size++
	}
	return isNew
}

// Complete returns up to limit terms starting with prefix, most frequently
// inserted first, then alphabetically. An empty prefix matches nothing.
func (idx *Index) Complete(prefix string, limit int) []Completion {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" || limit <= 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	node := idx.root
	for _, ch := range prefix {
		if node.children[ch] == nil {
			return nil
		}
		node = node.children[ch]
	}

	var results []Completion
	collect(node, &results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Value < results[j].Value
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

func collect(node *trieNode, results *[]Completion) {
	if node.isEnd {
		*results = append(*results, Completion{Value: node.value, Kind: node.kind, Count: node.count})
	}
	for _, child := range node.children {
		collect(child, results)
	}
}

// Size returns the number of distinct terms.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.size
}

// Reset removes every term.
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.root = newTrieNode()
	idx.size = 0
}
