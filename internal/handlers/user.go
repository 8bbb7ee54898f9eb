package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/volunhub/backend/internal/middleware"
	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/repositories"
)

// UserHandler handles HTTP requests related to users and dashboards
type UserHandler struct {
	userRepository        repositories.UserRepository
	opportunityRepository repositories.OpportunityRepository
	applicationRepository repositories.ApplicationRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, oppRepo repositories.OpportunityRepository, appRepo repositories.ApplicationRepository) *UserHandler {
	return &UserHandler{
		userRepository:        userRepo,
		opportunityRepository: oppRepo,
		applicationRepository: appRepo,
	}
}

// RegisterUserRoutes registers user profile and dashboard routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/profile", h.GetProfile)
	g.PUT("/users/profile", h.UpdateProfile)
	g.GET("/users/dashboard-volunteer", h.GetVolunteerDashboard)
	g.GET("/users/dashboard-ngo", h.GetNgoDashboard)
	g.GET("/users/:id", h.GetUser)
}

// GetUser retrieves another user's public profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	user, err := h.userRepository.GetUserByID(uint(id))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Location != "" {
		user.Location = req.Location
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if req.Skills != nil {
		user.Skills = req.Skills
	}
	if user.Role == models.RoleNGO {
		if req.OrganizationName != "" {
			user.OrganizationName = req.OrganizationName
		}
		if req.OrganizationDescription != "" {
			user.OrganizationDescription = req.OrganizationDescription
		}
		if req.WebsiteURL != "" {
			user.WebsiteURL = req.WebsiteURL
		}
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// GetVolunteerDashboard returns stats and latest open opportunities for a volunteer
func (h *UserHandler) GetVolunteerDashboard(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Role != models.RoleVolunteer {
		return echo.NewHTTPError(http.StatusForbidden, "Access restricted to volunteers")
	}

	applicationCount, err := h.applicationRepository.CountByVolunteer(currentUserID, "")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	acceptedCount, err := h.applicationRepository.CountByVolunteer(currentUserID, models.ApplicationStatusAccepted)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pendingCount, err := h.applicationRepository.CountByVolunteer(currentUserID, models.ApplicationStatusPending)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	opportunities, err := h.opportunityRepository.GetOpenOpportunities(c.Request().Context(), 3)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats": echo.Map{
			"applications": applicationCount,
			"accepted":     acceptedCount,
			"pending":      pendingCount,
			"skills":       len(user.Skills),
		},
		"opportunities": opportunities,
	})
}

// GetNgoDashboard returns stats and recent applications for an NGO
func (h *UserHandler) GetNgoDashboard(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Role != models.RoleNGO {
		return echo.NewHTTPError(http.StatusForbidden, "Access restricted to NGOs")
	}

	opportunities, err := h.opportunityRepository.GetOpportunitiesByNgoID(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	opportunityIDs := make([]string, 0, len(opportunities))
	activeOpportunities := 0
	for _, opp := range opportunities {
		opportunityIDs = append(opportunityIDs, opp.ID.Hex())
		if opp.Status == models.OpportunityStatusOpen {
			activeOpportunities++
		}
	}

	applicationsReceived, err := h.applicationRepository.CountByOpportunityIDs(opportunityIDs, "")
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	activeVolunteers, err := h.applicationRepository.CountDistinctVolunteers(opportunityIDs, models.ApplicationStatusAccepted)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pendingApplications, err := h.applicationRepository.CountByOpportunityIDs(opportunityIDs, models.ApplicationStatusPending)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	recent, err := h.applicationRepository.GetByOpportunityIDs(opportunityIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats": echo.Map{
			"activeOpportunities":  activeOpportunities,
			"applicationsReceived": applicationsReceived,
			"activeVolunteers":     activeVolunteers,
			"pendingApplications":  pendingApplications,
		},
		"recentApplications": recent,
	})
}
