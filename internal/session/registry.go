package session

import "github.com/roach88/francagen/internal/ir"

// Entry is one rendered declaration.
type Entry struct {
	Name ir.DeclName
	Text string
}

// Registry is the deduplicated, insertion-ordered store of rendered
// declarations.
//
// The first Store for a name wins. Later stores for the same name are
// silently dropped, not merged and not reported.
type Registry struct {
	seen    map[ir.DeclName]struct{}
	entries []Entry
	index   map[ir.DeclName]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		seen:  make(map[ir.DeclName]struct{}),
		index: make(map[ir.DeclName]int),
	}
}

// Store appends (name, text) if name has not been stored this session.
// Returns false when the name was already present and text was discarded.
func (r *Registry) Store(name ir.DeclName, text string) bool {
	if _, ok := r.seen[name]; ok {
		return false
	}
	r.seen[name] = struct{}{}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Text: text})
	return true
}

// Len returns the number of distinct names stored.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries in current order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Names returns the stored names in current order.
func (r *Registry) Names() []ir.DeclName {
	out := make([]ir.DeclName, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Name
	}
	return out
}

// Lookup returns the stored entry for name.
func (r *Registry) Lookup(name ir.DeclName) (Entry, bool) {
	pos, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[pos], true
}

// Contains reports whether name was stored this session.
func (r *Registry) Contains(name ir.DeclName) bool {
	_, ok := r.seen[name]
	return ok
}

// Position returns the current position of name.
func (r *Registry) Position(name ir.DeclName) (int, bool) {
	pos, ok := r.index[name]
	return pos, ok
}

// Reset clears the seen set, the ordered entries and the position index.
func (r *Registry) Reset() {
	clear(r.seen)
	clear(r.index)
	r.entries = r.entries[:0]
}

// rebuildIndex recomputes the position index from the entry order.
func (r *Registry) rebuildIndex() {
	clear(r.index)
	for i, e := range r.entries {
		r.index[e.Name] = i
	}
}

// swap exchanges the entries at positions i and j and updates the index for
// both names.
func (r *Registry) swap(i, j int) {
	r.entries[i], r.entries[j] = r.entries[j], r.entries[i]
	r.index[r.entries[i].Name] = i
	r.index[r.entries[j].Name] = j
}

// permute reorders the entries to follow names, which must be a permutation
// of the stored names.
func (r *Registry) permute(names []ir.DeclName) {
	next := make([]Entry, 0, len(r.entries))
	for _, n := range names {
		next = append(next, r.entries[r.index[n]])
	}
	r.entries = next
	r.rebuildIndex()
}
