package config

import (
	_ "embed"
)

// schemaSource is the CUE schema every configuration is unified with. It
// supplies defaults and rejects unknown fields.
//
//go:embed schema.cue
var schemaSource string
