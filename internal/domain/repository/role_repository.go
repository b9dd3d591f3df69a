package repository

import (
	"context"

	"clinic-scheduling/internal/domain/entity"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error)
}
