package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/shared/middleware"
	"publishing-backend/internal/shared/response"
)

type OrganizationHandler struct {
	service organization.Service
}

func NewOrganizationHandler(service organization.Service) *OrganizationHandler {
	return &OrganizationHandler{service: service}
}

// List xử lý GET /organizations - chỉ organization của actor
func (h *OrganizationHandler) List(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	orgs, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organizations retrieved", orgs)
}

// Create xử lý POST /organizations
func (h *OrganizationHandler) Create(c *gin.Context) {
	// STEP 1: ACTOR
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	// STEP 2: PARSE BODY
	var req organization.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	// STEP 3: SERVICE
	org, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Location", "/api/v1/organizations/"+org.ID.String())
	response.Success(c, http.StatusCreated, "Organization created successfully", org)
}

// Get xử lý GET /organizations/:id
func (h *OrganizationHandler) Get(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	org, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organization retrieved", org)
}

// Update xử lý PUT /organizations/:id
func (h *OrganizationHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req organization.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	org, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organization updated successfully", org)
}

// Delete xử lý DELETE /organizations/:id
func (h *OrganizationHandler) Delete(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organization deleted successfully", nil)
}

// ToggleActive xử lý POST /organizations/:id/toggle-active
func (h *OrganizationHandler) ToggleActive(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	org, err := h.service.ToggleActive(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Organization deactivated"
	if org.IsActive {
		message = "Organization activated"
	}
	response.Success(c, http.StatusOK, message, org)
}

// Stats xử lý GET /organizations/:id/stats
func (h *OrganizationHandler) Stats(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Organization stats retrieved", stats)
}

// parseID - id sai format coi như không tồn tại
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, organization.ErrOrganizationNotFound)
		return uuid.Nil, false
	}
	return id, true
}
