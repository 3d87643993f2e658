// Package mcpserver exposes card masking as Model Context Protocol tools so
// that agents can scrub text before it is stored or forwarded.
package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SamuelRCrider/luhny/core"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server serves the masking tools over MCP
type Server struct {
	config *Config
	policy *core.Policy
	audit  *core.AuditLogger
	logger *slog.Logger
	mcp    *server.MCPServer
}

// ValidationResult is the JSON payload returned by the validate tool
type ValidationResult struct {
	Valid  bool `json:"valid"`
	Digits int  `json:"digits"`
}

// New creates an MCP server with the masking tools registered.
// audit may be nil; a nil policy uses core.DefaultPolicy.
func New(config *Config, policy *core.Policy, audit *core.AuditLogger, logger *slog.Logger) *Server {
	config = LoadConfig(config)
	if policy == nil {
		policy = core.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: config,
		policy: policy,
		audit:  audit,
		logger: logger,
		mcp:    server.NewMCPServer(config.Name, config.Version),
	}

	s.mcp.AddTool(mcp.NewTool(ToolMaskCardNumbers,
		mcp.WithDescription("Replace the digits of Luhn-valid payment card numbers in text with a mask character. All other text, including spaces and hyphens, is returned unchanged."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to mask"),
		),
	), s.handleMask)

	s.mcp.AddTool(mcp.NewTool(ToolValidateCardNumber,
		mcp.WithDescription("Check whether a value is a 14 to 16 digit payment card number that passes the Luhn checksum. Spaces and hyphens are ignored."),
		mcp.WithString("number",
			mcp.Required(),
			mcp.Description("Card number to check"),
		),
	), s.handleValidate)

	return s
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves requests on stdin/stdout until stdin is closed
func (s *Server) ServeStdio() error {
	s.logger.Info("Starting MCP server", "name", s.config.Name, "version", s.config.Version)
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleMask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.Params.Arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}
	if len(text) > s.config.MaxInputBytes {
		return mcp.NewToolResultError(fmt.Sprintf("text exceeds maximum size of %d bytes", s.config.MaxInputBytes)), nil
	}

	var out strings.Builder
	out.Grow(len(text))

	masker := core.NewMasker(strings.NewReader(text), bufio.NewWriter(&out), s.policy).
		WithAuditLogger(s.audit).
		WithLogger(s.logger)
	if err := masker.Mask(); err != nil {
		return nil, fmt.Errorf("failed to mask text: %w", err)
	}

	stats := masker.Stats()
	s.logger.Debug("Masked tool input",
		"stream_id", masker.StreamID(),
		"masked_runs", stats.MaskedRuns,
		"digits_masked", stats.DigitsMasked)

	return mcp.NewToolResultText(out.String()), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	number, ok := request.Params.Arguments["number"].(string)
	if !ok {
		return mcp.NewToolResultError("number argument is required and must be a string"), nil
	}

	data, err := json.Marshal(ValidationResult{
		Valid:  core.IsCardNumber(strings.TrimSpace(number)),
		Digits: core.CountDigits(number),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}
