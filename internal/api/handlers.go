package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/saadjs/fittrack-cli/internal/service"
	"go.uber.org/zap"
)

type scaleRequest struct {
	Base     service.BaseNutrition `json:"base"`
	Amount   float64               `json:"amount"`
	Unit     string                `json:"unit"`
	Servings *float64              `json:"servings,omitempty"`
	IsLiquid bool                  `json:"is_liquid"`
}

type scaleResponse struct {
	Nutrition   service.ScaledNutrition `json:"nutrition"`
	Reference   string                  `json:"reference"`
	Unit        string                  `json:"unit"`
	UnknownUnit bool                    `json:"unknown_unit,omitempty"`
}

type entitlementsResponse struct {
	service.Entitlements
	Usage []service.UsageStatus `json:"usage"`
}

func (r *Router) analyzeFood(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	c.JSON(http.StatusOK, service.AnalyzeFood(name, c.QueryArray("category"), c.Query("serving")))
}

func (r *Router) scaleNutrition(c *gin.Context) {
	var req scaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, r.scale(req))
}

func (r *Router) scale(req scaleRequest) scaleResponse {
	servings := 1.0
	if req.Servings != nil {
		servings = *req.Servings
	}
	in := service.ScaleInput{
		Base:     req.Base,
		Amount:   req.Amount,
		Unit:     req.Unit,
		Servings: servings,
		IsLiquid: req.IsLiquid,
	}
	unknown := !service.IsKnownUnit(req.Unit)
	if unknown {
		r.logger.Warn("scaling with unknown unit", zap.String("unit", req.Unit))
	}
	return scaleResponse{
		Nutrition:   service.ScaleNutrition(in),
		Reference:   in.ReferenceLabel(),
		Unit:        service.NormalizeUnit(req.Unit),
		UnknownUnit: unknown,
	}
}

func (r *Router) getEntitlements(c *gin.Context) {
	resp, err := r.entitlements()
	if err != nil {
		r.logger.Error("resolve entitlements", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve entitlements"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) entitlements() (entitlementsResponse, error) {
	tier, err := service.CurrentTier(r.db)
	if err != nil {
		return entitlementsResponse{}, err
	}
	usage, err := service.UsageReport(r.db)
	if err != nil {
		return entitlementsResponse{}, err
	}
	return entitlementsResponse{Entitlements: service.EntitlementsFor(tier), Usage: usage}, nil
}
