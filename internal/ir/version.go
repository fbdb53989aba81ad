package ir

// Version constants for the graph schema and compiler.
const (
	// SchemaVersion is the persisted graph schema version.
	SchemaVersion = "1"

	// CompilerVersion is the folio outline compiler version.
	CompilerVersion = "0.1.0"
)
