// Package schemas embeds the JSON Schema documents shipped with the planner.
package schemas

import "embed"

// Files holds every *.schema.json in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Schema file names.
const (
	RebalanceSuggestions = "rebalance_suggestions.schema.json"
	Snapshot             = "snapshot.schema.json"
)
