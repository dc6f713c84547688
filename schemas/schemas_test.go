package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalschemas "github.com/spdery/coldreach/internal/schemas"
)

func TestWorkflowResponseSchema_ValidJSON(t *testing.T) {
	var v interface{}
	err := json.Unmarshal([]byte(WorkflowResponse), &v)
	require.NoError(t, err, "schema file should be valid JSON")
}

func TestWorkflowResponseSchema_AcceptsWellFormedResponse(t *testing.T) {
	doc := `{"icebreaker": "Love your SaaS onboarding flow", "status": "success", "provider": "claude"}`
	assert.NoError(t, internalschemas.ValidateJSONString(WorkflowResponse, doc))
}

func TestWorkflowResponseSchema_RejectsMissingIcebreaker(t *testing.T) {
	doc := `{"status": "success"}`
	err := internalschemas.ValidateJSONString(WorkflowResponse, doc)
	require.Error(t, err)

	var verr *internalschemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
}

func TestWorkflowResponseSchema_RejectsEmptyIcebreaker(t *testing.T) {
	doc := `{"icebreaker": ""}`
	assert.Error(t, internalschemas.ValidateJSONString(WorkflowResponse, doc))
}

func TestWorkflowResponseSchema_RejectsUnknownStatus(t *testing.T) {
	doc := `{"icebreaker": "hi", "status": "maybe"}`
	assert.Error(t, internalschemas.ValidateJSONString(WorkflowResponse, doc))
}
