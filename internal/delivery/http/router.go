package http

import (
	"net/http"

	"disability-services-api/internal/delivery/http/handler"
	"disability-services-api/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	availabilityHandler *handler.AvailabilityHandler
	appointmentHandler  *handler.AppointmentHandler
	adminHandler        *handler.AppointmentAdminHandler
	locationHandler     *handler.OutreachLocationHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	availabilityHandler *handler.AvailabilityHandler,
	appointmentHandler *handler.AppointmentHandler,
	adminHandler *handler.AppointmentAdminHandler,
	locationHandler *handler.OutreachLocationHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		availabilityHandler: availabilityHandler,
		appointmentHandler:  appointmentHandler,
		adminHandler:        adminHandler,
		locationHandler:     locationHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public routes
	api.HandleFunc("/availability", r.availabilityHandler.GetAvailability).Methods(http.MethodGet)
	api.HandleFunc("/outreach-locations", r.locationHandler.ListActiveLocations).Methods(http.MethodGet)

	// Appointment routes (protected)
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/reschedule", r.appointmentHandler.RescheduleAppointment).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPatch)

	// Admin routes (protected - admin and staff)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireStaff)
	admin.HandleFunc("/appointments", r.adminHandler.ListAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/appointments/{id}/status", r.adminHandler.UpdateStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/audit-logs", r.adminHandler.ListAuditLogs).Methods(http.MethodGet)

	// Location management (admin only)
	admin.Handle("/outreach-locations", middleware.RequireAdmin(http.HandlerFunc(r.locationHandler.CreateLocation))).Methods(http.MethodPost)
	admin.Handle("/outreach-locations", middleware.RequireAdmin(http.HandlerFunc(r.locationHandler.ListAllLocations))).Methods(http.MethodGet)
	admin.Handle("/outreach-locations/{id}", middleware.RequireAdmin(http.HandlerFunc(r.locationHandler.UpdateLocation))).Methods(http.MethodPut)
	admin.Handle("/outreach-locations/{id}/active", middleware.RequireAdmin(http.HandlerFunc(r.locationHandler.SetLocationActive))).Methods(http.MethodPatch)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
