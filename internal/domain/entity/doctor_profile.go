package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile holds practice details for users with the doctor role.
type DoctorProfile struct {
	UserID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization    string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Biography         string          `gorm:"type:text" json:"biography,omitempty"`
	YearsOfExperience int             `gorm:"not null;default:0" json:"years_of_experience"`
	ConsultationFee   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"consultation_fee"`

	// Relationships
	User           User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WeeklySchedule []WeeklySchedule `gorm:"foreignKey:DoctorID;references:UserID" json:"weekly_schedule,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
