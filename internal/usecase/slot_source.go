package usecase

import (
	"context"
	"time"

	"clinic-scheduling/internal/converter"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/internal/domain/repository"
	"clinic-scheduling/internal/scheduling"

	"gorm.io/gorm"
)

// slotSource loads what the slot engine needs for one doctor and runs it.
// Shared by slot listing and booking so both see the same windows.
type slotSource struct {
	weeklyRepo      repository.WeeklyScheduleRepository
	dayOffRepo      repository.DayOffRepository
	exceptionalRepo repository.ExceptionalScheduleRepository
	appointmentRepo repository.AppointmentRepository
}

func (s *slotSource) generate(ctx context.Context, db *gorm.DB, doctor *entity.DoctorProfile, from, to, now time.Time) ([]entity.TimeSlot, error) {
	doctorID := doctor.UserID

	entries, err := s.weeklyRepo.FindByDoctorID(ctx, db, doctorID)
	if err != nil {
		return nil, err
	}
	week, err := scheduling.NewWeekModel(doctorID, entries)
	if err != nil {
		return nil, err
	}

	daysOff, err := s.dayOffRepo.FindByDoctorID(ctx, db, doctorID, &from, &to)
	if err != nil {
		return nil, err
	}
	exceptional, err := s.exceptionalRepo.FindByDoctorID(ctx, db, doctorID, &from, &to)
	if err != nil {
		return nil, err
	}

	occupied, err := s.appointmentRepo.FindOccupied(ctx, db, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	booked := make([]entity.BookedWindow, 0, len(occupied))
	for i := range occupied {
		booked = append(booked, occupied[i].Window())
	}

	doc := scheduling.Doctor{ID: doctorID, Name: converter.DoctorDisplayName(doctor)}
	overrides := scheduling.Overrides{DaysOff: daysOff, Exceptional: exceptional}
	return scheduling.ExpandRange(doc, week, overrides, from, to, booked, now), nil
}
