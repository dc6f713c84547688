// Package schemas holds the JSON Schemas for external payloads consumed by
// the pipeline.
package schemas

import _ "embed"

// WorkflowResponse is the schema for the workflow webhook's icebreaker
// response. Responses that fail this schema are treated as permanent
// provider errors (no retry).
//
//go:embed workflow_response.schema.json
var WorkflowResponse string
