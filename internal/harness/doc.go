// Package harness runs ordering conformance scenarios.
//
// A scenario is a YAML file naming one or more model files (or an inline
// model) and a list of assertions about the types headers those models
// produce: which declaration precedes which, the exact order, how many
// declarations were stored, which duplicates were dropped and which
// containers are cyclic.
//
// Each scenario renders its containers in memory with a fixed clock, so
// outcomes are deterministic and can be compared against golden files with
// RunWithGolden:
//
//	go test ./internal/harness -update
//
// Scenarios never write generated files and never touch the run ledger.
package harness
