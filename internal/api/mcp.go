package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gin-gonic/gin"
	"github.com/saadjs/fittrack-cli/internal/service"
	"go.uber.org/zap"
)

type analyzeFoodParams struct {
	Name        string   `json:"name" description:"Product name"`
	Categories  []string `json:"categories,omitempty" description:"Category tags from the product database"`
	ServingSize string   `json:"serving_size,omitempty" description:"Free-text serving size such as 250ml"`
}

type checkEntitlementsParams struct {
	Feature string `json:"feature,omitempty" description:"Feature to check; omit for the full entitlement set"`
}

type toolHandler func(*protocol.CallToolRequest) (*protocol.CallToolResult, error)

// errInvalidParams marks tool errors caused by the caller's arguments.
type errInvalidParams struct{ msg string }

func (e errInvalidParams) Error() string { return e.msg }

func (r *Router) tools() map[string]toolHandler {
	return map[string]toolHandler{
		"analyze_food":       r.toolAnalyzeFood,
		"scale_nutrition":    r.toolScaleNutrition,
		"check_entitlements": r.toolCheckEntitlements,
	}
}

func (r *Router) handleMCP(c *gin.Context) {
	var req protocol.CallToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid JSON: %v", err)})
		return
	}
	handler, ok := r.tools()[req.Name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown tool: %s", req.Name)})
		return
	}
	result, err := handler(&req)
	if err != nil {
		status := http.StatusInternalServerError
		var invalid errInvalidParams
		if errors.As(err, &invalid) {
			status = http.StatusBadRequest
		} else {
			r.logger.Error("mcp tool failed", zap.String("tool", req.Name), zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (r *Router) toolAnalyzeFood(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params analyzeFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, errInvalidParams{msg: "name is required"}
	}
	return jsonResult(service.AnalyzeFood(params.Name, params.Categories, params.ServingSize))
}

func (r *Router) toolScaleNutrition(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params scaleRequest
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return jsonResult(r.scale(params))
}

func (r *Router) toolCheckEntitlements(req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params checkEntitlementsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Feature) == "" {
		resp, err := r.entitlements()
		if err != nil {
			return nil, err
		}
		return jsonResult(resp)
	}

	f, ok := service.ParseFeature(params.Feature)
	if !ok {
		return nil, errInvalidParams{msg: fmt.Sprintf("unknown feature %q", params.Feature)}
	}
	tier, err := service.CurrentTier(r.db)
	if err != nil {
		return nil, err
	}
	return jsonResult(gin.H{
		"tier":      tier.String(),
		"feature":   f.String(),
		"available": service.HasFeature(tier, f),
		"limit":     service.FeatureLimit(tier, f).String(),
	})
}

// extractParams round-trips the loosely typed arguments into target.
func extractParams(req *protocol.CallToolRequest, target any) error {
	b, err := json.Marshal(req.Arguments)
	if err != nil {
		return errInvalidParams{msg: fmt.Sprintf("marshal arguments: %v", err)}
	}
	if err := json.Unmarshal(b, target); err != nil {
		return errInvalidParams{msg: fmt.Sprintf("invalid parameters: %v", err)}
	}
	return nil
}

func jsonResult(data any) (*protocol.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{Type: "text", Text: string(b)},
		},
	}, nil
}
