package manager

import (
	"sort"
	"sync"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
)

// Registry holds the current policy set, indexed by policy id. The whole
// set is swapped atomically on reload; readers always see a consistent
// snapshot and never a half-applied one.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]*ast.PolicyDocument
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{docs: map[string]*ast.PolicyDocument{}}
}

// Replace swaps the whole policy set.
func (r *Registry) Replace(docs []*ast.PolicyDocument) {
	next := make(map[string]*ast.PolicyDocument, len(docs))
	for _, doc := range docs {
		next[doc.ID] = doc
	}
	r.mu.Lock()
	r.docs = next
	r.mu.Unlock()
}

// Get returns the policy with the given id.
func (r *Registry) Get(id string) (*ast.PolicyDocument, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// All returns every loaded policy, sorted by id.
func (r *Registry) All() []*ast.PolicyDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*ast.PolicyDocument, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Active returns the active policies, sorted by id.
func (r *Registry) Active() []*ast.PolicyDocument {
	var out []*ast.PolicyDocument
	for _, doc := range r.All() {
		if doc.IsActive() {
			out = append(out, doc)
		}
	}
	return out
}

// Len returns the number of loaded policies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}
