package session

import "github.com/roach88/francagen/internal/ir"

// Session is the registry and reference graph of one container.
type Session struct {
	Registry *Registry
	Graph    *Graph
}

// New creates an empty session.
func New() *Session {
	return &Session{
		Registry: NewRegistry(),
		Graph:    NewGraph(),
	}
}

// Store records a rendered declaration. See Registry.Store.
func (s *Session) Store(name ir.DeclName, text string) bool {
	return s.Registry.Store(name, text)
}

// Reference records that referencer depends on referenced. See Graph.AddEdge.
func (s *Session) Reference(referencer, referenced ir.DeclName) {
	s.Graph.AddEdge(referencer, referenced)
}

// Reset clears all session state.
func (s *Session) Reset() {
	s.Registry.Reset()
	s.Graph.Reset()
}
