// Package session holds the per-container state of one emission run: the
// type registry, the reference graph and the reorderer that brings the
// registry into dependency order.
//
// LIFECYCLE:
//
// A Session is created (or Reset) before a container is rendered, populated
// while its declarations are rendered, consumed by Reorder and by document
// assembly, and discarded before the next container begins. Nothing is
// shared across containers.
//
// ORDERING CONTRACT:
//
// For every recorded edge (referencer, referenced) where both names are
// stored, the referenced declaration is placed before the referencer once
// Reorder returns without error. Edges naming declarations that were never
// stored (primitives, types from other containers) impose no constraint.
//
// A dependency cycle among stored declarations has no valid order. Reorder
// detects it up front and returns a *CycleError instead of looping.
//
// Session is not safe for concurrent use. The emission pipeline is single
// threaded; parallel renderers must use one Session per container.
package session
