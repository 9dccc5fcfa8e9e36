package handlers

import (
	"net/http"

	"homefix_backend/internal/auth"
	"homefix_backend/internal/middleware"
	"homefix_backend/internal/services"
	"homefix_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type WorkerHandler struct {
	*BaseHandler
	workerService services.WorkerService
}

func NewWorkerHandler(base *BaseHandler, workerService services.WorkerService) *WorkerHandler {
	return &WorkerHandler{
		BaseHandler:   base,
		workerService: workerService,
	}
}

func (h *WorkerHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	workers := r.Group("/workers")
	workers.Use(requireAuth)
	{
		workers.GET("/nearby", middleware.RequirePermission(auth.PermWorkersSearch), h.NearbyWorkers)
		workers.GET("/search", middleware.RequirePermission(auth.PermWorkersSearch), h.Search)
		workers.PUT("/profile", middleware.RequirePermission(auth.PermWorkerProfile), h.UpdateProfile)
		workers.PUT("/location", middleware.RequirePermission(auth.PermWorkerProfile), h.UpdateLocation)
		workers.GET("/:id", middleware.RequirePermission(auth.PermWorkersSearch), h.GetDetails)
	}
}

func (h *WorkerHandler) NearbyWorkers(c *gin.Context) {
	var query dto.NearbyWorkersQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	list, err := h.workerService.NearbyWorkers(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   list.Count,
		"workers": list.Workers,
	})
}

func (h *WorkerHandler) Search(c *gin.Context) {
	var query dto.SearchWorkersQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	list, err := h.workerService.Search(c.Request.Context(), h.GetDB(c), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   list.Count,
		"workers": list.Workers,
	})
}

func (h *WorkerHandler) GetDetails(c *gin.Context) {
	details, err := h.workerService.GetDetails(c.Request.Context(), h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "worker": details})
}

func (h *WorkerHandler) UpdateProfile(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkerProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	worker, err := h.workerService.UpdateProfile(c.Request.Context(), h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "worker": worker})
}

func (h *WorkerHandler) UpdateLocation(c *gin.Context) {
	p, ok := h.GetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateLocationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	worker, err := h.workerService.UpdateLocation(c.Request.Context(), h.GetDB(c), p, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "worker": worker})
}
