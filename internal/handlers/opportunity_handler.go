package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/volunhub/backend/internal/middleware"
	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
)

// OpportunityHandler handles opportunity-related HTTP requests
type OpportunityHandler struct {
	opportunityRepository repositories.OpportunityRepository
	applicationRepository repositories.ApplicationRepository
	userRepository        repositories.UserRepository
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(oppRepo repositories.OpportunityRepository, appRepo repositories.ApplicationRepository, userRepo repositories.UserRepository) *OpportunityHandler {
	return &OpportunityHandler{
		opportunityRepository: oppRepo,
		applicationRepository: appRepo,
		userRepository:        userRepo,
	}
}

// RegisterOpportunityRoutes registers opportunity routes
func (h *OpportunityHandler) RegisterOpportunityRoutes(g *echo.Group) {
	g.POST("/opportunities", h.CreateOpportunity)
	g.GET("/opportunities", h.GetOpenOpportunities)
	g.GET("/opportunities/my", h.GetMyOpportunities)
	g.GET("/opportunities/:id", h.GetOpportunity)
	g.PUT("/opportunities/:id", h.UpdateOpportunity)
	g.DELETE("/opportunities/:id", h.DeleteOpportunity)
}

// enrichedOpportunity carries the NGO summary alongside the opportunity
type enrichedOpportunity struct {
	models.Opportunity
	Ngo models.UserSummary `json:"ngo"`
}

func (h *OpportunityHandler) enrichOpportunities(opportunities []models.Opportunity) []enrichedOpportunity {
	enriched := make([]enrichedOpportunity, len(opportunities))
	ngoCache := make(map[uint]models.UserSummary)

	for i, opp := range opportunities {
		enriched[i] = enrichedOpportunity{Opportunity: opp}
		if ngo, ok := ngoCache[opp.NgoID]; ok {
			enriched[i].Ngo = ngo
		} else if user, err := h.userRepository.GetUserByID(opp.NgoID); err == nil {
			summary := user.ToSummary()
			ngoCache[opp.NgoID] = summary
			enriched[i].Ngo = summary
		}
	}
	return enriched
}

// CreateOpportunity posts a new opportunity (NGO only)
func (h *OpportunityHandler) CreateOpportunity(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Role != models.RoleNGO {
		return echo.NewHTTPError(http.StatusForbidden, "Only NGOs can create opportunities.")
	}

	var req models.CreateOpportunityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	opportunity := &models.Opportunity{
		NgoID:          currentUserID,
		Title:          req.Title,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		Duration:       req.Duration,
		Location:       req.Location,
		Status:         req.Status,
	}
	if err := h.opportunityRepository.CreateOpportunity(c.Request().Context(), opportunity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":     "Opportunity created successfully",
		"opportunity": opportunity,
	})
}

// GetOpenOpportunities lists all open opportunities for volunteers to browse
func (h *OpportunityHandler) GetOpenOpportunities(c echo.Context) error {
	opportunities, err := h.opportunityRepository.GetOpenOpportunities(c.Request().Context(), 0)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"opportunities": h.enrichOpportunities(opportunities),
	})
}

// GetMyOpportunities lists the logged-in NGO's own opportunities
func (h *OpportunityHandler) GetMyOpportunities(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Role != models.RoleNGO {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized.")
	}

	opportunities, err := h.opportunityRepository.GetOpportunitiesByNgoID(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"opportunities": opportunities})
}

// GetOpportunity retrieves a single opportunity by ID
func (h *OpportunityHandler) GetOpportunity(c echo.Context) error {
	opportunity, err := h.opportunityRepository.GetOpportunityByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrOpportunityNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Opportunity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	enriched := h.enrichOpportunities([]models.Opportunity{*opportunity})
	return c.JSON(http.StatusOK, echo.Map{"opportunity": enriched[0]})
}

// UpdateOpportunity edits an opportunity owned by the logged-in NGO
func (h *OpportunityHandler) UpdateOpportunity(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	opportunity, err := h.opportunityRepository.GetOpportunityByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrOpportunityNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Opportunity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if opportunity.NgoID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this opportunity.")
	}

	var req models.UpdateOpportunityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.Title != "" {
		opportunity.Title = req.Title
	}
	if req.Description != "" {
		opportunity.Description = req.Description
	}
	if req.RequiredSkills != nil {
		opportunity.RequiredSkills = req.RequiredSkills
	}
	if req.Duration != "" {
		opportunity.Duration = req.Duration
	}
	if req.Location != "" {
		opportunity.Location = req.Location
	}
	if req.Status != "" {
		opportunity.Status = req.Status
	}

	if err := h.opportunityRepository.UpdateOpportunity(c.Request().Context(), c.Param("id"), opportunity); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Opportunity updated successfully",
		"opportunity": opportunity,
	})
}

// DeleteOpportunity removes an opportunity and every application attached
// to it
func (h *OpportunityHandler) DeleteOpportunity(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	opportunity, err := h.opportunityRepository.GetOpportunityByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrOpportunityNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Opportunity not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if opportunity.NgoID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not own this opportunity.")
	}

	if err := h.applicationRepository.DeleteByOpportunityID(c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.opportunityRepository.DeleteOpportunity(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Opportunity and related applications deleted successfully",
	})
}
