package converter

import (
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
)

func AuditLogToResponse(log *entity.AuditLog) dto.AuditLogResponse {
	response := dto.AuditLogResponse{
		ID:        log.ID,
		Action:    log.Action,
		Metadata:  log.Metadata,
		CreatedAt: log.CreatedAt,
	}

	if log.User != nil {
		role := log.User.Role.RoleName
		if role == "" {
			role = entity.RoleNameByID(log.User.RoleID)
		}
		response.User = &dto.AuditLogUser{
			ID:       log.User.ID,
			Email:    log.User.Email,
			FullName: log.User.FullName,
			Role:     role,
		}
	}

	return response
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		responses = append(responses, AuditLogToResponse(&logs[i]))
	}
	return responses
}
