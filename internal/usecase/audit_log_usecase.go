package usecase

import (
	"context"
	"errors"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

type AuditLogUsecase interface {
	GetAuditLogs(ctx context.Context, query *dto.AuditLogQuery) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		db:           db,
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAuditLogs(ctx context.Context, query *dto.AuditLogQuery) (*dto.AuditLogListResponse, error) {
	filter := entity.AuditLogFilter{
		Action: query.Action,
		Limit:  query.Limit,
		Offset: (query.Page - 1) * query.Limit,
	}
	if query.UserID != "" {
		userID, err := uuid.Parse(query.UserID)
		if err != nil {
			return nil, ErrUserNotFound
		}
		filter.UserID = &userID
	}

	from, to, err := parseDateBounds(query.From, query.To)
	if err != nil {
		return nil, err
	}
	filter.From = from
	if to != nil {
		// Inclusive end date.
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}

	logs, total, err := u.auditLogRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to find audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: total,
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, id int64) (*dto.AuditLogResponse, error) {
	auditLog, err := u.auditLogRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	response := converter.AuditLogToResponse(auditLog)
	return &response, nil
}
