package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-scheduling/internal/booking"
	"clinic-scheduling/internal/client"
	"clinic-scheduling/internal/domain/entity"
	"clinic-scheduling/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment against a running API as a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			apiURL, _ := flags.GetString("api")
			email, _ := flags.GetString("email")
			password, _ := flags.GetString("password")
			doctor, _ := flags.GetString("doctor")
			date, _ := flags.GetString("date")
			at, _ := flags.GetString("time")

			doctorID, err := uuid.Parse(doctor)
			if err != nil {
				return fmt.Errorf("invalid --doctor: %w", err)
			}

			details := booking.Details{}
			details.ConsultationType, _ = flags.GetString("type")
			details.ReasonForVisit, _ = flags.GetString("reason")
			details.Priority, _ = flags.GetString("priority")
			details.ContactPhone, _ = flags.GetString("phone")

			log := logrus.New()
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			api := client.New(apiURL, client.NewSession("", ""), client.WithLogger(log))
			if err := api.Login(ctx, email, password); err != nil {
				return fmt.Errorf("login: %w", err)
			}

			c := booking.NewCoordinator(api, validator.NewValidator(), log)
			if err := c.SelectDoctor(ctx, doctorID, date, date); err != nil {
				return fmt.Errorf("fetch slots: %w", err)
			}
			slotID, err := pickSlot(c, at)
			if err != nil {
				return err
			}
			if err := c.SelectSlot(slotID); err != nil {
				return err
			}
			if err := c.EnterDetails(details); err != nil {
				return err
			}

			outcome, err := c.Submit(ctx)
			if err != nil {
				return err
			}
			if outcome.Retryable {
				log.Warnf("Booking failed (%s), retrying once", outcome.Message)
				if outcome, err = c.Retry(ctx); err != nil {
					return err
				}
			}

			if !outcome.Confirmed {
				return fmt.Errorf("booking rejected: %s %s %v", outcome.Reason, outcome.Message, outcome.Fields)
			}
			fmt.Printf("Booked %s (appointment %s)\n", outcome.BookingCode, outcome.AppointmentID)
			return nil
		},
	}

	cmd.Flags().String("api", "http://localhost:8080/api/v1", "API base URL")
	cmd.Flags().String("email", "", "Patient email")
	cmd.Flags().String("password", "", "Patient password")
	cmd.Flags().String("doctor", "", "Doctor ID")
	cmd.Flags().String("date", time.Now().Format(entity.DateLayout), "Appointment date (YYYY-MM-DD)")
	cmd.Flags().String("time", "", "Slot start (HH:MM); first free slot when empty")
	cmd.Flags().String("type", "general", "Consultation type")
	cmd.Flags().String("reason", "", "Reason for visit")
	cmd.Flags().String("priority", "medium", "Priority")
	cmd.Flags().String("phone", "", "Contact phone")

	return cmd
}

func pickSlot(c *booking.Coordinator, at string) (string, error) {
	var want *entity.TimeOfDay
	if at != "" {
		t, err := entity.ParseTimeOfDay(at)
		if err != nil {
			return "", err
		}
		want = &t
	}

	for _, s := range c.Slots() {
		if !s.IsAvailable {
			continue
		}
		if want == nil || s.StartTime == *want {
			return s.ID, nil
		}
	}
	if want != nil {
		return "", fmt.Errorf("no free slot at %s", want)
	}
	return "", errors.New("no free slots on that date")
}
