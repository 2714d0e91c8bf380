package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"psyconnect/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth, when non-nil, guards the chat routes.
func NewRouter(
	invitationController *controllers.InvitationController,
	chatController *controllers.ChatController,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", invitationController.Health)

	// Invitation lifecycle
	mux.HandleFunc("POST /invite-psychologist", invitationController.InvitePsychologist)
	mux.HandleFunc("GET /get-invite-by-email", invitationController.GetInviteByEmail)
	mux.HandleFunc("POST /process-invite", invitationController.ProcessInvite)

	// Chat relay
	chat := chatController.Chat
	agents := chatController.ListAgents
	if requireAuth != nil {
		chat = requireAuth(chat)
		agents = requireAuth(agents)
	}
	mux.HandleFunc("POST /chat", chat)
	mux.HandleFunc("GET /agents", agents)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
