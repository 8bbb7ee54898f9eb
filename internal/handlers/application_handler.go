package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/volunhub/backend/internal/middleware"
	"github.com/volunhub/backend/internal/models"
	"github.com/volunhub/backend/internal/realtime"
	"github.com/volunhub/backend/internal/repositories"
)

// ApplicationHandler handles volunteer application HTTP requests
type ApplicationHandler struct {
	applicationRepository  repositories.ApplicationRepository
	opportunityRepository  repositories.OpportunityRepository
	userRepository         repositories.UserRepository
	messageRepository      repositories.MessageRepository
	notificationRepository repositories.NotificationRepository
	gateway                *realtime.Gateway
}

// NewApplicationHandler creates a new ApplicationHandler
func NewApplicationHandler(
	appRepo repositories.ApplicationRepository,
	oppRepo repositories.OpportunityRepository,
	userRepo repositories.UserRepository,
	messageRepo repositories.MessageRepository,
	notifRepo repositories.NotificationRepository,
	gateway *realtime.Gateway,
) *ApplicationHandler {
	return &ApplicationHandler{
		applicationRepository:  appRepo,
		opportunityRepository:  oppRepo,
		userRepository:         userRepo,
		messageRepository:      messageRepo,
		notificationRepository: notifRepo,
		gateway:                gateway,
	}
}

// RegisterApplicationRoutes registers application routes
func (h *ApplicationHandler) RegisterApplicationRoutes(g *echo.Group) {
	g.POST("/applications/apply/:opportunityId", h.Apply)
	g.GET("/applications/my", h.GetMyApplications)
	g.GET("/applications/ngo", h.GetNgoApplications)
	g.PUT("/applications/:id", h.UpdateStatus)
}

// enrichedApplication attaches the opportunity (and optionally the
// volunteer) to an application row.
type enrichedApplication struct {
	models.Application
	Opportunity *models.Opportunity `json:"opportunity,omitempty"`
	Volunteer   *models.UserSummary `json:"volunteer,omitempty"`
}

// Apply submits a volunteer's application for an open opportunity
func (h *ApplicationHandler) Apply(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Role != models.RoleVolunteer {
		return echo.NewHTTPError(http.StatusForbidden, "Only volunteers can apply.")
	}

	opportunityID := c.Param("opportunityId")
	opportunity, err := h.opportunityRepository.GetOpportunityByID(c.Request().Context(), opportunityID)
	if err != nil || opportunity.Status != models.OpportunityStatusOpen {
		return echo.NewHTTPError(http.StatusNotFound, "Opportunity not found or is closed.")
	}

	applied, err := h.applicationRepository.HasApplied(opportunityID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if applied {
		return echo.NewHTTPError(http.StatusBadRequest, "You have already applied for this opportunity.")
	}

	application := &models.Application{
		OpportunityID: opportunityID,
		VolunteerID:   currentUserID,
		Status:        models.ApplicationStatusPending,
	}
	if err := h.applicationRepository.CreateApplication(application); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Let the NGO know someone applied. Best effort, like every
	// notification created off the back of another action.
	senderID := currentUserID
	notification := &models.Notification{
		RecipientID: opportunity.NgoID,
		SenderID:    &senderID,
		Content:     user.Name + " applied to \"" + opportunity.Title + "\"",
		Link:        "/applications",
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		log.Printf("Failed to create application notification: %v", err)
	} else if h.gateway != nil {
		h.gateway.NotifyUser(opportunity.NgoID, notification)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Application submitted successfully",
		"application": enrichedApplication{
			Application: *application,
			Opportunity: opportunity,
		},
	})
}

// GetMyApplications lists the logged-in volunteer's applications
func (h *ApplicationHandler) GetMyApplications(c echo.Context) error {
	currentUserID := middleware.GetUserID(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if user.Role != models.RoleVolunteer {
		return echo.NewHTTPError(http.StatusForbidden, "Not authorized.")
	}

	applications, err := h.applicationRepository.GetByVolunteerID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]enrichedApplication, 0, len(applications))
	for _, application := range applications {
		e := enrichedApplication{Application: application}
		if opportunity, err := h.opportunityRepository.GetOpportunityByID(c.Request().Context(), application.OpportunityID); err == nil {
			e.Opportunity = opportunity
		}
		enriched = append(enriched, e)
	}

	return c.JSON(http.StatusOK, echo.Map{"applications": enriched})
}

// GetNgoApplications lists all applications across the NGO's opportunities
func (h *ApplicationHandler) GetNgoApplications(c echo.Context) error {
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

	opportunityByID := make(map[string]*models.Opportunity, len(opportunities))
	opportunityIDs := make([]string, 0, len(opportunities))
	for i := range opportunities {
		id := opportunities[i].ID.Hex()
		opportunityByID[id] = &opportunities[i]
		opportunityIDs = append(opportunityIDs, id)
	}

	applications, err := h.applicationRepository.GetByOpportunityIDs(opportunityIDs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	enriched := make([]enrichedApplication, 0, len(applications))
	for _, application := range applications {
		e := enrichedApplication{
			Application: application,
			Opportunity: opportunityByID[application.OpportunityID],
		}
		if volunteer, err := h.userRepository.GetUserByID(application.VolunteerID); err == nil {
			summary := volunteer.ToSummary()
			e.Volunteer = &summary
		}
		enriched = append(enriched, e)
	}

	return c.JSON(http.StatusOK, echo.Map{"applications": enriched})
}

// UpdateStatus accepts or rejects an application (NGO owner only). An
// accepted volunteer gets a welcome chat message so the conversation
// between both sides already exists when they open the messaging view.
func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
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

	applicationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid application ID")
	}

	var req models.UpdateApplicationStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	application, err := h.applicationRepository.GetApplicationByID(uint(applicationID))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Application not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	opportunity, err := h.opportunityRepository.GetOpportunityByID(c.Request().Context(), application.OpportunityID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if opportunity.NgoID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to update this application.")
	}

	application.Status = req.Status
	if err := h.applicationRepository.UpdateApplication(application); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Status == models.ApplicationStatusAccepted {
		welcome := "Congratulations! Your application for \"" + opportunity.Title + "\" has been accepted"
		message := &models.Message{
			SenderID:   currentUserID,
			ReceiverID: application.VolunteerID,
			Content:    welcome,
		}
		if err := h.messageRepository.CreateMessage(message); err != nil {
			log.Printf("Failed to send welcome message: %v", err)
		}
	}

	senderID := currentUserID
	notification := &models.Notification{
		RecipientID: application.VolunteerID,
		SenderID:    &senderID,
		Content:     "Your application for \"" + opportunity.Title + "\" was " + req.Status,
		Link:        "/my-applications",
	}
	if err := h.notificationRepository.CreateNotification(notification); err != nil {
		log.Printf("Failed to create status notification: %v", err)
	} else if h.gateway != nil {
		h.gateway.NotifyUser(application.VolunteerID, notification)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     "Application " + req.Status + " successfully",
		"application": application,
	})
}
