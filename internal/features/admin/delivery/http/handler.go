package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-admin-backend/internal/common/middleware"
	"channel-admin-backend/internal/features/admin/models"
	"channel-admin-backend/internal/features/admin/service"
)

type AdminHandler struct {
	service service.AdminService
	logger  *zap.Logger
}

func NewAdminHandler(service service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admins := router.Group("/channels/:id/admins")
	{
		admins.GET("", h.listAdmins)
		admins.POST("", h.addAdmin)
		admins.PUT("/:userId/permissions", h.updatePermissions)
		admins.DELETE("/:userId", h.removeAdmin)
		admins.POST("/permissions/bulk", h.bulkUpdatePermissions)
	}

	templates := router.Group("/templates")
	{
		templates.GET("", h.listTemplates)
		templates.POST("", h.saveTemplate)
	}

	router.GET("/users/:id/stats", h.getUserStats)
}

type addAdminRequest struct {
	UserID      string   `json:"user_id" binding:"required"`
	Role        string   `json:"role" binding:"required"`
	Permissions []string `json:"permissions"`
}

type updatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type bulkUpdateRequest struct {
	UserIDs     []string `json:"user_ids" binding:"required"`
	Permissions []string `json:"permissions"`
}

type saveTemplateRequest struct {
	Name        string   `json:"name" binding:"required"`
	Permissions []string `json:"permissions"`
}

// @Summary List channel admins
// @Description Returns admin assignments of a channel. Search and role filters are applied as query predicates.
// @Tags admins
// @Produce json
// @Param id path string true "Channel internal id"
// @Param search query string false "Substring filter over the linked account email"
// @Param role query string false "Exact role filter" Enums(owner, admin, editor)
// @Success 200 {array} models.AdminAssignment "Admin assignments"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /channels/{id}/admins [get]
func (h *AdminHandler) listAdmins(c *gin.Context) {
	filter := models.AdminFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}

	admins, err := h.service.ListAdmins(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, admins)
}

// @Summary Add channel admin
// @Description Creates an admin assignment and appends an "admin_added" activity log entry.
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Channel internal id"
// @Param request body addAdminRequest true "Admin assignment"
// @Success 201 {object} map[string]bool "Created"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Router /channels/{id}/admins [post]
func (h *AdminHandler) addAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.AddAdmin(c.Request.Context(), c.Param("id"), req.UserID, req.Role, req.Permissions); err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// @Summary Update admin permissions
// @Description Replaces the permission set of an admin assignment and appends a "permissions_updated" log entry.
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Channel internal id"
// @Param userId path string true "User id"
// @Param request body updatePermissionsRequest true "New permission set"
// @Success 200 {object} map[string]bool "Updated"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Router /channels/{id}/admins/{userId}/permissions [put]
func (h *AdminHandler) updatePermissions(c *gin.Context) {
	var req updatePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.UpdatePermissions(c.Request.Context(), c.Param("id"), c.Param("userId"), req.Permissions); err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Remove channel admin
// @Description Deletes an admin assignment and appends an "admin_removed" log entry.
// @Tags admins
// @Produce json
// @Param id path string true "Channel internal id"
// @Param userId path string true "User id"
// @Success 200 {object} map[string]bool "Removed"
// @Router /channels/{id}/admins/{userId} [delete]
func (h *AdminHandler) removeAdmin(c *gin.Context) {
	if err := h.service.RemoveAdmin(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary Bulk update permissions
// @Description Applies one permission set to several users concurrently. Individual failures are absorbed; partial success is not rolled back.
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Channel internal id"
// @Param request body bulkUpdateRequest true "User ids and permission set"
// @Success 200 {object} map[string]bool "Finished"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Router /channels/{id}/admins/permissions/bulk [post]
func (h *AdminHandler) bulkUpdatePermissions(c *gin.Context) {
	var req bulkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.service.BulkUpdatePermissions(c.Request.Context(), c.Param("id"), req.UserIDs, req.Permissions); err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// @Summary List permission templates
// @Tags templates
// @Produce json
// @Success 200 {array} models.PermissionTemplate "Templates"
// @Router /templates [get]
func (h *AdminHandler) listTemplates(c *gin.Context) {
	templates, err := h.service.ListTemplates(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, templates)
}

// @Summary Save permission template
// @Description Stores a named reusable permission set. Duplicate names are permitted.
// @Tags templates
// @Accept json
// @Produce json
// @Param request body saveTemplateRequest true "Template"
// @Success 201 {object} models.PermissionTemplate "Saved template"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Router /templates [post]
func (h *AdminHandler) saveTemplate(c *gin.Context) {
	var req saveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	template, err := h.service.SaveTemplate(c.Request.Context(), req.Name, req.Permissions)
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, template)
}

// @Summary Get user statistics
// @Description Returns total message count, last activity, engagement rate and recent activity log of a user.
// @Tags admins
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} models.UserStats "User statistics"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/{id}/stats [get]
func (h *AdminHandler) getUserStats(c *gin.Context) {
	stats, err := h.service.GetUserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, stats)
}
