package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "shootflow/internal/api/context"
	"shootflow/internal/api/handlers"
	"shootflow/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler         *handlers.AuthHandler
	OrgHandler          *handlers.OrgHandler
	InviteHandler       *handlers.InviteHandler
	CustomerHandler     *handlers.CustomerHandler
	ProjectHandler      *handlers.ProjectHandler
	MessageHandler      *handlers.MessageHandler
	InquiryHandler      *handlers.InquiryHandler
	NotificationHandler *handlers.NotificationHandler
	ArtifactHandler     *handlers.ArtifactHandler
	AvailabilityHandler *handlers.AvailabilityHandler
	DeliveryHandler     *handlers.DeliveryHandler
	AuditHandler        *handlers.AuditHandler
	HealthHandler       *handlers.HealthHandler
	MetricsHandler      *handlers.MetricsHandler
	AuthMiddleware      *middleware.AuthMiddleware
	OrgMiddleware       *middleware.OrgContextMiddleware
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	router.GET("/healthz", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	// Public endpoints: the delivery page and the booking-inquiry intake.
	// IP-keyed rate limits, no auth.
	router.GET("/delivery/:token",
		chain(deps.DeliveryHandler.Get, middleware.RateLimit("public")))
	router.POST("/api/v1/public/organizations/:org_id/inquiries",
		chain(deps.InquiryHandler.CreatePublic, middleware.RateLimit("public")))

	// Authentication
	router.POST("/api/v1/auth/signup", wrap(deps.AuthHandler.Signup))
	router.POST("/api/v1/auth/login", wrap(deps.AuthHandler.Login))
	router.POST("/api/v1/auth/refresh", wrap(deps.AuthHandler.Refresh))

	authMid := deps.AuthMiddleware
	orgMid := deps.OrgMiddleware

	// authed requires a valid token; orged additionally resolves the active
	// org from the X-Organization-ID header (falling back to the caller's
	// personal org).
	authed := func(h http.HandlerFunc) httprouter.Handle {
		return chain(h, authMid.Handle)
	}
	orged := func(h http.HandlerFunc) httprouter.Handle {
		return chain(h, authMid.Handle, orgMid.Handle)
	}

	router.GET("/api/v1/me", authed(deps.AuthHandler.Me))

	// Organizations and membership
	router.POST("/api/v1/organizations", authed(deps.OrgHandler.Create))
	router.GET("/api/v1/organizations", authed(deps.OrgHandler.List))
	router.GET("/api/v1/organizations/current", orged(deps.OrgHandler.GetCurrent))
	router.PATCH("/api/v1/organizations/current", orged(deps.OrgHandler.Update))
	router.GET("/api/v1/members", orged(deps.OrgHandler.ListMembers))
	router.PATCH("/api/v1/members/:member_id/role", orged(deps.OrgHandler.ChangeMemberRole))
	router.DELETE("/api/v1/members/:member_id", orged(deps.OrgHandler.RemoveMember))

	// Invitations
	router.POST("/api/v1/invitations", orged(deps.InviteHandler.Create))
	router.GET("/api/v1/invitations", orged(deps.InviteHandler.List))
	router.DELETE("/api/v1/invitations/:invite_id", orged(deps.InviteHandler.Revoke))
	router.POST("/api/v1/invitations/accept", authed(deps.InviteHandler.Accept))

	// Customers
	router.POST("/api/v1/customers", orged(deps.CustomerHandler.Create))
	router.GET("/api/v1/customers", orged(deps.CustomerHandler.List))
	router.GET("/api/v1/customers/:customer_id", orged(deps.CustomerHandler.Get))
	router.PATCH("/api/v1/customers/:customer_id", orged(deps.CustomerHandler.Update))
	router.DELETE("/api/v1/customers/:customer_id", orged(deps.CustomerHandler.Delete))

	// Projects
	router.POST("/api/v1/projects", orged(deps.ProjectHandler.Create))
	router.GET("/api/v1/projects", orged(deps.ProjectHandler.List))
	router.GET("/api/v1/projects/:project_id", orged(deps.ProjectHandler.Get))
	router.PATCH("/api/v1/projects/:project_id", orged(deps.ProjectHandler.Update))
	router.DELETE("/api/v1/projects/:project_id", orged(deps.ProjectHandler.Delete))
	router.POST("/api/v1/projects/:project_id/assign/technician", orged(deps.ProjectHandler.AssignTechnician))
	router.POST("/api/v1/projects/:project_id/assign/editor", orged(deps.ProjectHandler.AssignEditor))
	router.POST("/api/v1/projects/:project_id/assign/manager", orged(deps.ProjectHandler.AssignProjectManager))
	router.POST("/api/v1/projects/:project_id/assign/customer", orged(deps.ProjectHandler.AssignCustomer))
	router.POST("/api/v1/projects/:project_id/status", orged(deps.ProjectHandler.UpdateStatus))
	router.POST("/api/v1/projects/:project_id/delivery/enable", orged(deps.ProjectHandler.EnableDelivery))
	router.POST("/api/v1/projects/:project_id/delivery/disable", orged(deps.ProjectHandler.DisableDelivery))
	router.POST("/api/v1/projects/:project_id/delivery/regenerate", orged(deps.ProjectHandler.RegenerateDeliveryToken))

	// Project chat
	router.POST("/api/v1/projects/:project_id/messages", orged(deps.MessageHandler.Post))
	router.GET("/api/v1/projects/:project_id/messages", orged(deps.MessageHandler.List))

	// Download artifacts
	router.POST("/api/v1/projects/:project_id/artifacts", orged(deps.ArtifactHandler.Request))
	router.GET("/api/v1/projects/:project_id/artifacts", orged(deps.ArtifactHandler.List))

	// Inquiries (org side)
	router.GET("/api/v1/inquiries", orged(deps.InquiryHandler.List))
	router.PATCH("/api/v1/inquiries/:inquiry_id/status", orged(deps.InquiryHandler.UpdateStatus))
	router.POST("/api/v1/inquiries/:inquiry_id/convert", orged(deps.InquiryHandler.Convert))

	// Notifications
	router.GET("/api/v1/notifications", orged(deps.NotificationHandler.List))
	router.GET("/api/v1/notifications/unread", orged(deps.NotificationHandler.UnreadCount))
	router.POST("/api/v1/notifications/:notification_id/read", orged(deps.NotificationHandler.MarkRead))
	// PUT keeps the static path out of the POST tree's wildcard.
	router.PUT("/api/v1/notifications/read-all", orged(deps.NotificationHandler.MarkAllRead))

	// Availability (self-scoped)
	router.GET("/api/v1/availability", authed(deps.AvailabilityHandler.Get))
	router.PUT("/api/v1/availability", authed(deps.AvailabilityHandler.Update))
	router.POST("/api/v1/availability/blocks", authed(deps.AvailabilityHandler.AddBlock))
	router.DELETE("/api/v1/availability/blocks/:block_id", authed(deps.AvailabilityHandler.RemoveBlock))

	// Audit trail
	router.GET("/api/v1/audit", orged(deps.AuditHandler.List))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
