package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/usecase"
	"clinic-scheduling/pkg/response"
	"clinic-scheduling/pkg/validator"
)

const (
	defaultAuditPage  = 1
	defaultAuditLimit = 50
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
	validator       *validator.CustomValidator
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase, validator *validator.CustomValidator) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
		validator:       validator,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	auditLogID, ok := pathInt64(w, r, "id", "audit log")
	if !ok {
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), auditLogID)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditLogNotFound) {
			response.NotFound(w, "Audit log not found")
			return
		}
		response.InternalServerError(w, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

func (h *AuditLogHandler) GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := dto.AuditLogQuery{
		UserID: q.Get("user_id"),
		Action: q.Get("action"),
		From:   q.Get("start_date"),
		To:     q.Get("end_date"),
		Page:   defaultAuditPage,
		Limit:  defaultAuditLimit,
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "page must be a number")
			return
		}
		query.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(w, "limit must be a number")
			return
		}
		query.Limit = n
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	logs, err := h.auditLogUsecase.GetAuditLogs(r.Context(), &query)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	totalPages := int((logs.Total + int64(query.Limit) - 1) / int64(query.Limit))
	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", logs.Logs, &response.Meta{
		Page:       query.Page,
		Limit:      query.Limit,
		Total:      logs.Total,
		TotalPages: totalPages,
	})
}
