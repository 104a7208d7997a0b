// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	cfg.OutputFile = defaults.OutputFile
//	if len(padded) > defaults.MaxPadLength { ... }
//
// DO NOT hardcode values such as folder names or length caps anywhere else.
package defaults

// Version is the current schemafuzz version
const Version = "0.9.0"

// ToolName is the binary and metric namespace name.
const ToolName = "schemafuzz"

// ============================================================================
// GENERATION LIMITS
// ============================================================================
//
// Length rules build strings from schema-declared bounds. Third-party
// documents routinely declare maxLength values in the millions, so padding
// is capped and anything above the cap is reported as skipped.
// ============================================================================

const (
	// MaxPadLength is the longest value a maxLength rule will synthesize (100000)
	MaxPadLength = 100_000

	// MaxSchemaDepth bounds the schema walk for pathological nesting (64)
	MaxSchemaDepth = 64
)

// ============================================================================
// COLLECTION LAYOUT
// ============================================================================

const (
	// VariationsFolder is the folder that receives generated variations
	VariationsFolder = "Variations"

	// PostmanSchemaV21 is the collection schema URL written to new collections
	PostmanSchemaV21 = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"

	// BaseURLVariable is the collection variable that prefixes every request URL
	BaseURLVariable = "{{baseUrl}}"
)

// ============================================================================
// CONTENT TYPES
// ============================================================================

const (
	// ContentTypeJSON is application/json
	ContentTypeJSON = "application/json"

	// ContentTypeYAML is application/yaml
	ContentTypeYAML = "application/yaml"
)

// ============================================================================
// OUTPUT
// ============================================================================

const (
	// OutputFile is the default path of the generated collection
	OutputFile = "schemafuzz.postman_collection.json"

	// ReportFormat is the default summary format
	ReportFormat = "text"

	// MetricsPrefix namespaces every exported metric
	MetricsPrefix = ToolName + "_"

	// FilePermission is used for every file the CLI writes
	FilePermission = 0o644
)
