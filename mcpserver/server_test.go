package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/SamuelRCrider/luhny/core"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text
}

func TestLoadConfig(t *testing.T) {
	config := LoadConfig(nil)
	assert.Equal(t, "luhny", config.Name)
	assert.Equal(t, "dev", config.Version)
	assert.Equal(t, 1<<20, config.MaxInputBytes)

	t.Setenv("LUHNY_MCP_MAX_INPUT_BYTES", "2048")
	assert.Equal(t, 2048, LoadConfig(&Config{}).MaxInputBytes)
	assert.Equal(t, 10, LoadConfig(&Config{MaxInputBytes: 10}).MaxInputBytes)

	t.Setenv("LUHNY_MCP_MAX_INPUT_BYTES", "lots")
	assert.Equal(t, 1<<20, LoadConfig(&Config{}).MaxInputBytes)
}

func TestHandleMask(t *testing.T) {
	s := New(nil, nil, nil, nil)

	result, err := s.handleMask(context.Background(), callRequest(ToolMaskCardNumbers, map[string]interface{}{
		"text": "refund to 4111-1111-1111-1111 please",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "refund to XXXX-XXXX-XXXX-XXXX please", resultText(t, result))
}

func TestHandleMaskUsesPolicy(t *testing.T) {
	policy, err := core.NewPolicyBuilder().WithMaskCharacter('*').Build()
	require.NoError(t, err)

	var auditBuf bytes.Buffer
	audit := core.NewAuditLogger(&auditBuf, core.AuditLogLevelStandard)
	s := New(nil, policy, audit, nil)

	result, err := s.handleMask(context.Background(), callRequest(ToolMaskCardNumbers, map[string]interface{}{
		"text": "378282246310005",
	}))
	require.NoError(t, err)
	assert.Equal(t, "***************", resultText(t, result))
	assert.Contains(t, auditBuf.String(), core.EventCardMasked)
}

func TestHandleMaskRejectsBadInput(t *testing.T) {
	s := New(&Config{MaxInputBytes: 8}, nil, nil, nil)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{"missing text", map[string]interface{}{}, "text argument is required"},
		{"wrong type", map[string]interface{}{"text": 42}, "text argument is required"},
		{"too large", map[string]interface{}{"text": strings.Repeat("a", 9)}, "exceeds maximum size of 8 bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleMask(context.Background(), callRequest(ToolMaskCardNumbers, tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.wantMsg)
		})
	}
}

func TestHandleValidate(t *testing.T) {
	s := New(nil, nil, nil, nil)

	tests := []struct {
		number string
		want   ValidationResult
	}{
		{"4111 1111 1111 1111", ValidationResult{Valid: true, Digits: 16}},
		{" 378282246310005 ", ValidationResult{Valid: true, Digits: 15}},
		{"4111111111111112", ValidationResult{Valid: false, Digits: 16}},
		{"79927398713", ValidationResult{Valid: false, Digits: 11}},
	}

	for _, tt := range tests {
		t.Run(tt.number, func(t *testing.T) {
			result, err := s.handleValidate(context.Background(), callRequest(ToolValidateCardNumber, map[string]interface{}{
				"number": tt.number,
			}))
			require.NoError(t, err)
			assert.False(t, result.IsError)

			var got ValidationResult
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleValidateMissingNumber(t *testing.T) {
	s := New(nil, nil, nil, nil)

	result, err := s.handleValidate(context.Background(), callRequest(ToolValidateCardNumber, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPServer(t *testing.T) {
	s := New(&Config{Name: "test", Version: "1.0.0"}, nil, nil, nil)
	assert.NotNil(t, s.MCPServer())
}
