package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"publishing-backend/internal/domains/organization"
	"publishing-backend/internal/domains/publication"
	"publishing-backend/internal/shared/middleware"
	"publishing-backend/internal/shared/response"
)

type PublicationHandler struct {
	service publication.Service
}

func NewPublicationHandler(service publication.Service) *PublicationHandler {
	return &PublicationHandler{service: service}
}

// ========================================
// PUBLIC (optional auth)
// ========================================

// List xử lý GET /publications
func (h *PublicationHandler) List(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	respondList(c, "Publications retrieved", result)
}

// Search xử lý GET /publications/search?q=
func (h *PublicationHandler) Search(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	result, err := h.service.Search(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	respondList(c, "Search results", result)
}

// Get xử lý GET /publications/:id
func (h *PublicationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), middleware.CurrentActor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Publication retrieved", detail)
}

// GetBySlug xử lý GET /publications/slug/:slug
func (h *PublicationHandler) GetBySlug(c *gin.Context) {
	detail, err := h.service.GetBySlug(c.Request.Context(), middleware.CurrentActor(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Publication retrieved", detail)
}

// ListByOrganization xử lý GET /organizations/:id/publications
func (h *PublicationHandler) ListByOrganization(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, organization.ErrOrganizationNotFound)
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByOrganization(c.Request.Context(), middleware.CurrentActor(c), orgID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	respondList(c, "Organization publications retrieved", result)
}

// ========================================
// AUTHENTICATED
// ========================================

// ListMine xử lý GET /publications/my
func (h *PublicationHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	filter, ok := bindFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListMine(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	respondList(c, "My publications retrieved", result)
}

// Create xử lý POST /publications
func (h *PublicationHandler) Create(c *gin.Context) {
	// STEP 1: ACTOR
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	// STEP 2: PARSE BODY
	var req publication.CreatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	// STEP 3: SERVICE
	detail, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Location", "/api/v1/publications/"+detail.ID.String())
	response.Success(c, http.StatusCreated, "Publication created successfully", detail)
}

// Update xử lý PUT /publications/:id
func (h *PublicationHandler) Update(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req publication.UpdatePublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	detail, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Publication updated successfully", detail)
}

// Delete xử lý DELETE /publications/:id
func (h *PublicationHandler) Delete(c *gin.Context) {
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

	response.Success(c, http.StatusOK, "Publication deleted successfully", nil)
}

// Publish xử lý POST /publications/:id/publish
func (h *PublicationHandler) Publish(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Publish(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Publication published successfully", detail)
}

// Archive xử lý POST /publications/:id/archive
func (h *PublicationHandler) Archive(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	detail, err := h.service.Archive(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Publication archived successfully", detail)
}

// ========================================
// HELPERS
// ========================================

func bindFilter(c *gin.Context) (publication.ListFilter, bool) {
	var query publication.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query parameters")
		return publication.ListFilter{}, false
	}

	filter, err := query.ToFilter()
	if err != nil {
		response.Error(c, err)
		return publication.ListFilter{}, false
	}
	return filter, true
}

func respondList(c *gin.Context, message string, result *publication.ListResponse) {
	response.SuccessWithMeta(c, http.StatusOK, message, result.Items, &response.Meta{
		Page:     result.Page,
		PageSize: result.PageSize,
		Total:    result.Total,
	})
}

// parseID - id sai format coi như không tồn tại
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, publication.ErrPublicationNotFound)
		return uuid.Nil, false
	}
	return id, true
}
