// Waypoint - Travel Personalization and Notification Scheduling
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package category

import (
	"strings"
	"sync"
)

// Rule maps a set of keywords to a category. Rules are evaluated in
// table order: when keywords from several rules occur in the same query,
// the earliest rule wins.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules is the keyword table used to infer a category from search text.
// "parking" sits before "park" so that parking queries are not swallowed by parks.
var DefaultRules = []Rule{
	{Category: Restaurants, Keywords: []string{"restaurant", "food", "eat"}},
	{Category: Cafes, Keywords: []string{"cafe", "coffee"}},
	{Category: Hotels, Keywords: []string{"hotel", "stay", "accommodation"}},
	{Category: Hostels, Keywords: []string{"hostel"}},
	{Category: Malls, Keywords: []string{"mall", "shop"}},
	{Category: Parking, Keywords: []string{"parking"}},
	{Category: Parks, Keywords: []string{"park", "garden"}},
	{Category: GasStations, Keywords: []string{"gas", "fuel"}},
}

// Match is one keyword occurrence in a query.
type Match struct {
	Keyword  string
	Category string
	Rule     int // index into the rule table; lower wins
	Position int // byte offset in the lowercased query
}

// Matcher finds keyword occurrences in a query with an Aho-Corasick
// automaton, so the cost of inference is linear in the query length no
// matter how many keywords the table holds.
//
// Example:
//
//	m := NewMatcher(DefaultRules)
//	c, ok := m.Infer("Cheap coffee near the station")
//	// c == "cafes", ok == true
type Matcher struct {
	mu       sync.RWMutex
	root     *acNode
	keywords []keyword
	built    bool
}

type keyword struct {
	text     string
	category string
	rule     int
}

// acNode represents a node in the automaton.
type acNode struct {
	children map[rune]*acNode
	failure  *acNode
	output   []int // indices into keywords that end at this node
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// NewMatcher builds a matcher for rules. Matching is case-insensitive.
func NewMatcher(rules []Rule) *Matcher {
	m := &Matcher{root: newACNode()}
	for i, r := range rules {
		for _, kw := range r.Keywords {
			m.add(kw, r.Category, i)
		}
	}
	m.build()
	return m
}

var (
	defaultMatcher     *Matcher
	defaultMatcherOnce sync.Once
)

// DefaultMatcher returns a shared matcher over DefaultRules.
// The matcher is immutable after construction and safe for concurrent use.
func DefaultMatcher() *Matcher {
	defaultMatcherOnce.Do(func() {
		defaultMatcher = NewMatcher(DefaultRules)
	})
	return defaultMatcher
}

func (m *Matcher) add(text, category string, rule int) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return
	}
	m.keywords = append(m.keywords, keyword{text: text, category: category, rule: rule})
	m.built = false
}

// build constructs the trie and failure links.
func (m *Matcher) build() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.built {
		return
	}

	m.root = newACNode()
	for i, kw := range m.keywords {
		node := m.root
		for _, ch := range kw.text {
			if node.children[ch] == nil {
				node.children[ch] = newACNode()
			}
			node = node.children[ch]
		}
		node.output = append(node.output, i)
	}

	// BFS over the trie; each child's failure link is the longest proper
	// suffix that is also a trie path.
	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}
			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}

	m.built = true
}

// Search returns every keyword occurrence in query, in text order.
func (m *Matcher) Search(query string) []Match {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.built || len(m.keywords) == 0 {
		return nil
	}

	var matches []Match
	node := m.root
	for i, ch := range strings.ToLower(query) {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = m.root
			continue
		}
		node = node.children[ch]

		for _, idx := range node.output {
			kw := m.keywords[idx]
			matches = append(matches, Match{
				Keyword:  kw.text,
				Category: kw.category,
				Rule:     kw.rule,
				Position: i + len(string(ch)) - len(kw.text),
			})
		}
	}
	return matches
}

// Infer returns the category of the highest-priority rule with a keyword
// in query. Queries matching no keyword return ("", false).
func (m *Matcher) Infer(query string) (string, bool) {
	best := -1
	var category string
	for _, match := range m.Search(query) {
		if best == -1 || match.Rule < best {
			best = match.Rule
			category = match.Category
		}
	}
	return category, best != -1
}

// Infer classifies query with the default keyword table.
func Infer(query string) (string, bool) {
	return DefaultMatcher().Infer(query)
}

// CountQueries infers a category for each query and counts the hits.
// Unmatched queries are skipped.
func (m *Matcher) CountQueries(queries []string) map[string]int {
	counts := make(map[string]int)
	for _, q := range queries {
		if c, ok := m.Infer(q); ok {
			counts[c]++
		}
	}
	return counts
}
