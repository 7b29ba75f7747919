package config

// Exported for testing.
var (
	ResolveToken = resolveToken
	Validate     = validate
)
