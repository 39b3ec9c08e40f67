package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/redlitmus-in/MeterSquare-sub008/internal/http/middleware"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/model"
	"github.com/redlitmus-in/MeterSquare-sub008/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	changeRequests *service.ChangeRequestService
	reconciliation *service.ReconciliationService
	revisions      *service.RevisionService
	log            zerolog.Logger
}

func NewHandler(
	changeRequests *service.ChangeRequestService,
	reconciliation *service.ReconciliationService,
	revisions *service.RevisionService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		changeRequests: changeRequests,
		reconciliation: reconciliation,
		revisions:      revisions,
		log:            log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/change-requests", h.createChangeRequest)
	protected.GET("/change-requests/:id", h.getChangeRequest)
	protected.POST("/change-requests/:id/submit", h.submitChangeRequest)
	protected.POST("/change-requests/:id/approve", h.approveChangeRequest)
	protected.POST("/change-requests/:id/reject", h.rejectChangeRequest)
	protected.POST("/change-requests/:id/complete-purchase", h.completePurchase)
	protected.GET("/change-requests/:id/document", h.changeRequestDocument)

	protected.GET("/projects/:id/change-requests", h.listChangeRequests)
	protected.GET("/projects/:id/reconciliation", h.projectReconciliation)

	protected.GET("/boqs/:id/revisions", h.listRevisions)
	protected.POST("/boqs/:id/revisions", h.recordRevision)
	protected.GET("/boqs/:id/revisions/:rev/diff", h.diffRevision)
}

type materialLineRequest struct {
	MaterialName     string  `json:"material_name" binding:"required"`
	MasterMaterialID *int64  `json:"master_material_id"`
	Quantity         float64 `json:"quantity"`
	UnitCost         float64 `json:"unit_cost"`
}

type createChangeRequestRequest struct {
	ProjectID       string                `json:"project_id" binding:"required"`
	RequestType     string                `json:"request_type" binding:"required"`
	Materials       []materialLineRequest `json:"materials"`
	AssignedBuyerID *string               `json:"assigned_buyer_id"`
}

func (h *Handler) createChangeRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createChangeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	projectID, err := uuid.Parse(strings.TrimSpace(req.ProjectID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
		return
	}

	var buyerID *uuid.UUID
	if req.AssignedBuyerID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.AssignedBuyerID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assigned_buyer_id"})
			return
		}
		buyerID = &parsed
	}

	lines := make([]model.MaterialLine, 0, len(req.Materials))
	for _, line := range req.Materials {
		lines = append(lines, model.MaterialLine{
			MaterialName:     line.MaterialName,
			MasterMaterialID: line.MasterMaterialID,
			Quantity:         line.Quantity,
			UnitCost:         line.UnitCost,
		})
	}

	cr, err := h.changeRequests.Create(c.Request.Context(), service.CreateChangeRequestInput{
		ProjectID:       projectID,
		RequestType:     model.RequestType(strings.TrimSpace(req.RequestType)),
		Lines:           lines,
		AssignedBuyerID: buyerID,
		Principal:       principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cr)
}

func (h *Handler) getChangeRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cr, err := h.changeRequests.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

func (h *Handler) listChangeRequests(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	requests, err := h.changeRequests.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"change_requests": requests})
}

func (h *Handler) submitChangeRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cr, err := h.changeRequests.SubmitForReview(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

type approveRequest struct {
	ApproverRole string  `json:"approver_role" binding:"required"`
	AssigneeID   *string `json:"assignee_id"`
}

func (h *Handler) approveChangeRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var assigneeID *uuid.UUID
	if req.AssigneeID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.AssigneeID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignee_id"})
			return
		}
		assigneeID = &parsed
	}

	cr, err := h.changeRequests.Approve(c.Request.Context(), id, service.ApproveInput{
		ApproverRole: model.ApproverRole(strings.TrimSpace(req.ApproverRole)),
		AssigneeID:   assigneeID,
		Principal:    principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) rejectChangeRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cr, err := h.changeRequests.Reject(c.Request.Context(), id, req.Reason, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

func (h *Handler) completePurchase(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cr, err := h.changeRequests.MarkPurchaseCompleted(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, cr)
}

func (h *Handler) changeRequestDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.changeRequests.ApprovalDocument(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) projectReconciliation(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if c.Query("format") == "xlsx" {
		result, err := h.reconciliation.ExportXLSX(c.Request.Context(), projectID)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
		c.Data(http.StatusOK, xlsxContentType, result.Content)
		return
	}

	report, err := h.reconciliation.Compare(c.Request.Context(), projectID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) listRevisions(c *gin.Context) {
	boqID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	revisions, err := h.revisions.ListRevisions(c.Request.Context(), boqID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revisions": revisions})
}

type recordRevisionRequest struct {
	Action             string          `json:"action" binding:"required"`
	ActorName          string          `json:"actor_name"`
	Items              []model.BOQItem `json:"items"`
	Preliminaries      float64         `json:"preliminaries_amount"`
	DiscountPercentage *float64        `json:"discount_percentage"`
	DiscountAmount     *float64        `json:"discount_amount"`
	Terms              string          `json:"terms"`
}

func (h *Handler) recordRevision(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	boqID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req recordRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := h.revisions.RecordSnapshot(c.Request.Context(), service.RecordSnapshotInput{
		BOQID:              boqID,
		Action:             model.SnapshotAction(strings.TrimSpace(req.Action)),
		Items:              req.Items,
		Preliminaries:      req.Preliminaries,
		DiscountPercentage: req.DiscountPercentage,
		DiscountAmount:     req.DiscountAmount,
		Terms:              req.Terms,
		Principal:          principal,
		ActorName:          req.ActorName,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (h *Handler) diffRevision(c *gin.Context) {
	boqID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	revision, err := strconv.Atoi(c.Param("rev"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid revision"})
		return
	}

	result, err := h.revisions.Diff(c.Request.Context(), boqID, revision)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMissingAssignee):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "missing_assignee"})
	case errors.Is(err, service.ErrMissingRejectionReason):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "missing_rejection_reason"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "invalid_transition"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "request was modified concurrently, retry"})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
