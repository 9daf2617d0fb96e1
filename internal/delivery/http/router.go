package http

import (
	"net/http"

	"fabrication-workflow/internal/delivery/http/handler"
	"fabrication-workflow/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	appointmentHandler  *handler.AppointmentHandler
	intakeHandler       *handler.VisitIntakeHandler
	projectHandler      *handler.ProjectHandler
	blueprintHandler    *handler.BlueprintHandler
	paymentHandler      *handler.PaymentHandler
	fabricationHandler  *handler.FabricationHandler
	uploadHandler       *handler.UploadHandler
	notificationHandler *handler.NotificationHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	requestMiddleware   *middleware.RequestMiddleware
}

func NewRouter(
	appointmentHandler *handler.AppointmentHandler,
	intakeHandler *handler.VisitIntakeHandler,
	projectHandler *handler.ProjectHandler,
	blueprintHandler *handler.BlueprintHandler,
	paymentHandler *handler.PaymentHandler,
	fabricationHandler *handler.FabricationHandler,
	uploadHandler *handler.UploadHandler,
	notificationHandler *handler.NotificationHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	requestMiddleware *middleware.RequestMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		appointmentHandler:  appointmentHandler,
		intakeHandler:       intakeHandler,
		projectHandler:      projectHandler,
		blueprintHandler:    blueprintHandler,
		paymentHandler:      paymentHandler,
		fabricationHandler:  fabricationHandler,
		uploadHandler:       uploadHandler,
		notificationHandler: notificationHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		requestMiddleware:   requestMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Everything else requires a bearer token; ownership is checked per operation
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	// Appointments
	protected.HandleFunc("/appointments", r.appointmentHandler.RequestAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/me", r.appointmentHandler.GetMyAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/availability", r.appointmentHandler.GetAvailability).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}/complete", r.appointmentHandler.CompleteAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/no-show", r.appointmentHandler.MarkNoShow).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/reschedule", r.appointmentHandler.RequestReschedule).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{id}/intake", r.intakeHandler.GetIntakeByAppointment).Methods(http.MethodGet)

	// Site visit intakes
	protected.HandleFunc("/intakes/me", r.intakeHandler.GetMyIntakes).Methods(http.MethodGet)
	protected.HandleFunc("/intakes/{id}", r.intakeHandler.GetIntake).Methods(http.MethodGet)
	protected.HandleFunc("/intakes/{id}", r.intakeHandler.UpdateIntake).Methods(http.MethodPut)
	protected.HandleFunc("/intakes/{id}/submit", r.intakeHandler.SubmitIntake).Methods(http.MethodPost)

	// Projects
	protected.HandleFunc("/projects/me", r.projectHandler.GetMyProjects).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}", r.projectHandler.GetProject).Methods(http.MethodGet)

	// Blueprints
	protected.HandleFunc("/projects/{id}/blueprints", r.blueprintHandler.GetProjectBlueprints).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}/blueprints", r.blueprintHandler.UploadInitial).Methods(http.MethodPost)
	protected.HandleFunc("/projects/{id}/blueprints/revisions", r.blueprintHandler.UploadRevision).Methods(http.MethodPost)
	protected.HandleFunc("/blueprints/{id}", r.blueprintHandler.GetBlueprint).Methods(http.MethodGet)
	protected.HandleFunc("/blueprints/{id}/approve", r.blueprintHandler.Approve).Methods(http.MethodPost)
	protected.HandleFunc("/blueprints/{id}/request-revision", r.blueprintHandler.RequestRevision).Methods(http.MethodPost)

	// Payments
	protected.HandleFunc("/projects/{id}/payment-plan", r.paymentHandler.GetPlan).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}/payments", r.paymentHandler.GetProjectPayments).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}/payments", r.paymentHandler.SubmitProof).Methods(http.MethodPost)

	// Fabrication log
	protected.HandleFunc("/projects/{id}/fabrication", r.fabricationHandler.GetHistory).Methods(http.MethodGet)
	protected.HandleFunc("/projects/{id}/fabrication", r.fabricationHandler.RecordUpdate).Methods(http.MethodPost)

	// Uploads
	protected.HandleFunc("/uploads/presign", r.uploadHandler.PresignUpload).Methods(http.MethodPost)
	protected.HandleFunc("/uploads/download", r.uploadHandler.PresignDownload).Methods(http.MethodPost)

	// Notifications
	protected.HandleFunc("/notifications", r.notificationHandler.GetMyNotifications).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}/read", r.notificationHandler.MarkRead).Methods(http.MethodPost)

	// Back office routes (agent or admin)
	backOffice := api.PathPrefix("/admin").Subrouter()
	backOffice.Use(r.authMiddleware.Authenticate)
	backOffice.Use(middleware.RequireBackOffice)

	backOffice.HandleFunc("/appointments", r.appointmentHandler.GetAllAppointments).Methods(http.MethodGet)
	backOffice.HandleFunc("/appointments/{id}/hold", r.appointmentHandler.HoldSlot).Methods(http.MethodPost)
	backOffice.HandleFunc("/appointments/{id}/confirm", r.appointmentHandler.ConfirmAppointment).Methods(http.MethodPost)
	backOffice.HandleFunc("/appointments/{id}/reschedule", r.appointmentHandler.CompleteReschedule).Methods(http.MethodPost)

	backOffice.HandleFunc("/intakes", r.intakeHandler.GetSubmittedIntakes).Methods(http.MethodGet)
	backOffice.HandleFunc("/intakes/{id}/return", r.intakeHandler.ReturnIntake).Methods(http.MethodPost)
	backOffice.HandleFunc("/intakes/{id}/accept", r.intakeHandler.AcceptIntake).Methods(http.MethodPost)

	backOffice.HandleFunc("/projects", r.projectHandler.GetAllProjects).Methods(http.MethodGet)
	backOffice.HandleFunc("/assignable-users", r.projectHandler.GetAssignableUsers).Methods(http.MethodGet)
	backOffice.HandleFunc("/projects/{id}/assignments", r.projectHandler.AssignStaff).Methods(http.MethodPost)
	backOffice.HandleFunc("/projects/{id}/assignments/{userId}/{role}", r.projectHandler.RemoveAssignment).Methods(http.MethodDelete)
	backOffice.HandleFunc("/projects/{id}/cancel", r.projectHandler.CancelProject).Methods(http.MethodPost)
	backOffice.HandleFunc("/projects/{id}/payment-plan", r.paymentHandler.CreatePlan).Methods(http.MethodPost)
	backOffice.HandleFunc("/payment-plans/{id}", r.paymentHandler.UpdatePlan).Methods(http.MethodPut)

	backOffice.HandleFunc("/payments/pending", r.paymentHandler.GetPendingPayments).Methods(http.MethodGet)
	backOffice.HandleFunc("/payments/{id}/verify", r.paymentHandler.VerifyPayment).Methods(http.MethodPost)
	backOffice.HandleFunc("/payments/{id}/decline", r.paymentHandler.DeclinePayment).Methods(http.MethodPost)

	backOffice.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	backOffice.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)

	// Request id first so every response carries it, including CORS preflights
	r.router.Use(r.requestMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
