package mcpadapter

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
)

const (
	serverName    = "hsa-claims-engine"
	serverVersion = "1.0.0"

	ToolCheckEligibility = "check_hsa_eligibility"
	ToolMatchCatalog     = "match_catalog"
)

// Server exposes read-only eligibility tools to MCP clients. It never creates
// claims or touches balances.
type Server struct {
	mcp         *server.MCPServer
	eligibility ports.EligibilityChecker
	matcher     ports.CatalogMatcher
}

func NewServer(eligibility ports.EligibilityChecker, matcher ports.CatalogMatcher) *Server {
	s := &Server{
		mcp:         server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
		eligibility: eligibility,
		matcher:     matcher,
	}

	s.mcp.AddTool(mcp.NewTool(ToolCheckEligibility,
		mcp.WithDescription("Check whether a healthcare expense is eligible for HSA reimbursement. Uses the service catalog first and the AI classifier for unknown services."),
		mcp.WithString("service", mcp.Required(), mcp.Description("Free-text service or product description, e.g. \"Dental cleaning\".")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.checkEligibility)

	s.mcp.AddTool(mcp.NewTool(ToolMatchCatalog,
		mcp.WithDescription("Resolve a free-text description to the closest entry of the HSA service catalog with a 0-100 confidence."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to match against catalog service names.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), s.matchCatalog)

	return s
}

// Handler serves the streamable HTTP transport. Sessions are not kept.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
	)
}

func (s *Server) checkEligibility(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	service, err := req.RequireString("service")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	check, err := s.eligibility.CheckEligibility(ctx, service)
	if err != nil {
		if domain.IsKind(err, domain.ErrInvalidInput) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return jsonResult(check)
}

func (s *Server) matchCatalog(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.matcher.Match(query))
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(raw)), nil
}
