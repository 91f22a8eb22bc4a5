// Package selection tracks which discovered candidates the user wants
// bridges generated for. Scan results are recomputed every pass; user
// choices live here, keyed by stable qualified names, and survive
// rescans.
package selection

import (
	"sort"
	"strings"

	"github.com/tickforge/bridgegen/internal/scan"
)

// Candidate is one discovered unit plus its inclusion flag.
type Candidate struct {
	Descriptor scan.Descriptor
	Included   bool
}

// Group is the per-namespace view: the namespace's own flag plus its
// current candidates in qualified-name order.
type Group struct {
	Namespace  string
	Included   bool
	Candidates []*Candidate
}

// Model merges scan results into remembered choices. Flags are stored by
// namespace and qualified name, so a candidate that disappears and later
// reappears gets its old flag back.
type Model struct {
	reserved  string // namespace prefix excluded by default
	nsFlags   map[string]bool
	candFlags map[string]bool
	groups    map[string]*Group
}

// NewModel creates an empty model. reserved is the engine's own
// namespace prefix; candidates under it default to excluded.
func NewModel(reserved string) *Model {
	return &Model{
		reserved:  reserved,
		nsFlags:   make(map[string]bool),
		candFlags: make(map[string]bool),
		groups:    make(map[string]*Group),
	}
}

// Merge rebuilds the namespace groups from a fresh scan. Existing flags
// are preserved by qualified name; brand-new candidates and namespaces
// default to included unless they sit under the reserved namespace.
func (m *Model) Merge(result *scan.Result) {
	m.groups = make(map[string]*Group)
	for _, desc := range result.Descriptors {
		g, ok := m.groups[desc.Namespace]
		if !ok {
			included, seen := m.nsFlags[desc.Namespace]
			if !seen {
				included = !m.isReserved(desc.Namespace)
				m.nsFlags[desc.Namespace] = included
			}
			g = &Group{Namespace: desc.Namespace, Included: included}
			m.groups[desc.Namespace] = g
		}

		key := desc.QualifiedName()
		included, seen := m.candFlags[key]
		if !seen {
			included = !m.isReserved(desc.Namespace)
			m.candFlags[key] = included
		}
		g.Candidates = append(g.Candidates, &Candidate{Descriptor: desc, Included: included})
	}

	for _, g := range m.groups {
		sort.Slice(g.Candidates, func(i, j int) bool {
			return g.Candidates[i].Descriptor.QualifiedName() < g.Candidates[j].Descriptor.QualifiedName()
		})
	}
}

func (m *Model) isReserved(namespace string) bool {
	return m.reserved != "" && strings.HasPrefix(namespace, m.reserved)
}

// Groups returns the current namespace groups in name order.
func (m *Model) Groups() []*Group {
	out := make([]*Group, 0, len(m.groups))
	for _, g := range m.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Namespace < out[j].Namespace })
	return out
}

// ToggleNamespace sets a namespace's flag and cascades it to the
// namespace's current candidates only. Candidates discovered later keep
// the default.
func (m *Model) ToggleNamespace(namespace string, included bool) {
	m.nsFlags[namespace] = included
	g, ok := m.groups[namespace]
	if !ok {
		return
	}
	g.Included = included
	for _, c := range g.Candidates {
		c.Included = included
		m.candFlags[c.Descriptor.QualifiedName()] = included
	}
}

// SetCandidate sets one candidate's flag by qualified name.
func (m *Model) SetCandidate(qualifiedName string, included bool) {
	m.candFlags[qualifiedName] = included
	for _, g := range m.groups {
		for _, c := range g.Candidates {
			if c.Descriptor.QualifiedName() == qualifiedName {
				c.Included = included
				return
			}
		}
	}
}

// SelectAll includes every current namespace and candidate.
func (m *Model) SelectAll() {
	for ns := range m.groups {
		m.ToggleNamespace(ns, true)
	}
}

// SelectNone excludes every current namespace and candidate.
func (m *Model) SelectNone() {
	for ns := range m.groups {
		m.ToggleNamespace(ns, false)
	}
}

// Selected returns the descriptors eligible for generation: candidate
// flag on, inside a namespace whose flag is on.
func (m *Model) Selected() []scan.Descriptor {
	var out []scan.Descriptor
	for _, g := range m.Groups() {
		if !g.Included {
			continue
		}
		for _, c := range g.Candidates {
			if c.Included {
				out = append(out, c.Descriptor)
			}
		}
	}
	return out
}

// Counts aggregates the current candidates per strategy and namespace.
// Computed on demand, never cached.
func (m *Model) Counts() Counts {
	counts := Counts{
		ByStrategy:  make(map[scan.Strategy]int),
		ByNamespace: make(map[string]int),
	}
	for _, g := range m.groups {
		for _, c := range g.Candidates {
			counts.Total++
			counts.ByStrategy[c.Descriptor.Strategy]++
			counts.ByNamespace[g.Namespace]++
			if g.Included && c.Included {
				counts.Selected++
			}
		}
	}
	return counts
}

// Counts is an on-demand aggregate over the current candidate set.
type Counts struct {
	Total       int
	Selected    int
	ByStrategy  map[scan.Strategy]int
	ByNamespace map[string]int
}
