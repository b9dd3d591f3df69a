package http

import (
	"net/http"

	"clinic-scheduling/internal/delivery/http/handler"
	"clinic-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	doctorHandler      *handler.DoctorHandler
	patientHandler     *handler.PatientHandler
	scheduleHandler    *handler.ScheduleHandler
	dayOffHandler      *handler.DayOffHandler
	exceptionalHandler *handler.ExceptionalScheduleHandler
	appointmentHandler *handler.AppointmentHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
	loggingMiddleware  *middleware.LoggingMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	scheduleHandler *handler.ScheduleHandler,
	dayOffHandler *handler.DayOffHandler,
	exceptionalHandler *handler.ExceptionalScheduleHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		doctorHandler:      doctorHandler,
		patientHandler:     patientHandler,
		scheduleHandler:    scheduleHandler,
		dayOffHandler:      dayOffHandler,
		exceptionalHandler: exceptionalHandler,
		appointmentHandler: appointmentHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
		loggingMiddleware:  loggingMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.Me).Methods(http.MethodGet)

	// Scheduling reference data (public)
	api.HandleFunc("/scheduling/candidate-times", r.scheduleHandler.GetCandidateTimes).Methods(http.MethodGet)

	// Doctor self-service. Registered before /doctors/{id} so "me" is not taken as an ID.
	doctorSelf := api.NewRoute().Subrouter()
	doctorSelf.Use(r.authMiddleware.Authenticate)
	doctorSelf.Use(middleware.RequireDoctor)
	doctorSelf.HandleFunc("/doctors/me", r.doctorHandler.GetMyProfile).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/doctors/me", r.doctorHandler.UpdateMyProfile).Methods(http.MethodPut)
	doctorSelf.HandleFunc("/weekly-schedule/me", r.scheduleHandler.GetMyWeek).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/weekly-schedule/me", r.scheduleHandler.ReplaceMyWeek).Methods(http.MethodPut)
	doctorSelf.HandleFunc("/weekly-schedule/me/initialize", r.scheduleHandler.InitializeMyWeek).Methods(http.MethodPost)
	doctorSelf.HandleFunc("/days-off/me", r.dayOffHandler.ListMine).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/days-off/me", r.dayOffHandler.Create).Methods(http.MethodPost)
	doctorSelf.HandleFunc("/days-off/me/check/{date}", r.dayOffHandler.CheckMine).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/days-off/{id:[0-9]+}", r.dayOffHandler.Delete).Methods(http.MethodDelete)
	doctorSelf.HandleFunc("/exceptional-schedules/me", r.exceptionalHandler.ListMine).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/exceptional-schedules/me", r.exceptionalHandler.Create).Methods(http.MethodPost)
	doctorSelf.HandleFunc("/exceptional-schedules/{id:[0-9]+}", r.exceptionalHandler.Delete).Methods(http.MethodDelete)

	// Doctor directory (public)
	doctors := api.PathPrefix("/doctors").Subrouter()
	doctors.HandleFunc("", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/weekly-schedule", r.scheduleHandler.GetDoctorWeek).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/slots", r.scheduleHandler.GetDoctorSlots).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/days-off", r.dayOffHandler.ListForDoctor).Methods(http.MethodGet)
	doctors.HandleFunc("/{id}/exceptional-schedules", r.exceptionalHandler.ListForDoctor).Methods(http.MethodGet)

	// Patient self-service
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Use(r.authMiddleware.Authenticate)
	patients.Use(middleware.RequirePatient)
	patients.HandleFunc("/me", r.patientHandler.GetMyProfile).Methods(http.MethodGet)
	patients.HandleFunc("/me", r.patientHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Appointments (protected, ownership checked per request)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Handle("/book", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.Book))).Methods(http.MethodPost)
	appointments.HandleFunc("/me", r.appointmentHandler.ListMine).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.Cancel).Methods(http.MethodPost)
	appointments.Handle("/{id}/status", middleware.RequireAdminOrDoctor(http.HandlerFunc(r.appointmentHandler.UpdateStatus))).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id}/active", r.doctorHandler.SetDoctorActive).Methods(http.MethodPatch)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id:[0-9]+}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
