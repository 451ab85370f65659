package handlers

import (
	"net/http"

	v1mware "github.com/deepgram/chatdesk/internal/api/v1/middleware"
	"github.com/deepgram/chatdesk/internal/services"
	"github.com/deepgram/chatdesk/internal/web"
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, services *services.Services) {
	router.PathPrefix("/static/").Handler(web.StaticHandler()).Methods("GET")

	// Pages
	router.HandleFunc("/", HandleLoginPage).Methods("GET")
	router.Handle("/", v1mware.RateLimit("login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleLogin(services.GetUserStore(), services.GetSessionService(), w, r)
	}))).Methods("POST")

	router.HandleFunc("/signup", HandleSignupPage).Methods("GET")
	router.Handle("/signup", v1mware.RateLimit("signup")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleSignup(services.GetUserStore(), w, r)
	}))).Methods("POST")

	router.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		HandleLogout(services.GetSessionService(), w, r)
	}).Methods("GET")

	// Pages that need a session
	protectedRouter := router.NewRoute().Subrouter()
	protectedRouter.Use(v1mware.RequireSession(services.GetSessionService()))
	protectedRouter.HandleFunc("/chat", HandleChatPage).Methods("GET")

	// Chat API, public like the widget that calls it. Registered on the top-level router so a
	// wrong method gets 405. HTTP and WebSocket exchanges share one budget.
	chatLimiter := v1mware.NewLimiter("chat")
	router.Handle("/api/chat", chatLimiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleChat(services.GetChatService(), w, r)
	}))).Methods("POST")
	router.HandleFunc("/api/chat/ws", func(w http.ResponseWriter, r *http.Request) {
		HandleChatWebSocket(services.GetChatService(), services.GetConnectionManager(), chatLimiter, w, r)
	}).Methods("GET")
}
