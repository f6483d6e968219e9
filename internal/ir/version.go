package ir

// Version constants for the model schema and the generator.
const (
	// ModelVersion is the model document schema version.
	ModelVersion = "1"

	// GeneratorVersion is the francagen version stamped into generated files.
	GeneratorVersion = "0.3.0"
)
