package handlers

import (
	"errors"
	"net/http"

	"github.com/deepgram/chatdesk/internal/services/session"
	"github.com/deepgram/chatdesk/internal/services/users"
	"github.com/deepgram/chatdesk/internal/validation"
	"github.com/deepgram/chatdesk/internal/web"
	"github.com/deepgram/chatdesk/pkg/logger"
)

const (
	noticeLoginSuccess    = "Login successful!"
	noticeInvalidLogin    = "Invalid username or password."
	noticeSignupSuccess   = "Registration successful! Please log in."
	noticeUsernameTaken   = "Username already exists."
	noticeLoggedOut       = "Logged out successfully."
	noticeSomethingFailed = "Something went wrong. Please try again."
)

var pageTitles = map[string]string{
	web.PageLogin:  "Log in",
	web.PageSignup: "Sign up",
	web.PageChat:   "Chat",
}

// renderPage consumes pending flashes and renders page.
func renderPage(w http.ResponseWriter, r *http.Request, code int, page string) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	web.Render(w, code, page, web.PageData{
		Title:     pageTitles[page],
		Flashes:   session.PopFlashes(w, r),
		ServerURL: scheme + "://" + r.Host,
	})
}

// formNotice extracts the user-facing message from a validation failure.
func formNotice(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Notice
	}
	return validation.NoticeMissingFields
}

func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, web.PageLogin)
}

// HandleLogin checks the submitted credentials and starts a session.
func HandleLogin(userStore *users.Store, sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	l := logger.For(logger.HANDLER)

	form := validation.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	if err := validation.ValidateLogin(form); err != nil {
		session.AddFlash(w, r, session.FlashDanger, formNotice(err))
		renderPage(w, r, http.StatusOK, web.PageLogin)
		return
	}
	form = form.Trimmed()

	user, err := userStore.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			l.Error().Err(err).Msg("Failed to authenticate user")
			session.AddFlash(w, r, session.FlashDanger, noticeSomethingFailed)
			renderPage(w, r, http.StatusInternalServerError, web.PageLogin)
			return
		}
		l.Info().Str("username", form.Username).Str("client_ip", r.RemoteAddr).Msg("Rejected login")
		session.AddFlash(w, r, session.FlashDanger, noticeInvalidLogin)
		renderPage(w, r, http.StatusOK, web.PageLogin)
		return
	}

	if err := sessionService.CreateSession(r.Context(), w, user.IDString()); err != nil {
		l.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create session")
		session.AddFlash(w, r, session.FlashDanger, noticeSomethingFailed)
		renderPage(w, r, http.StatusInternalServerError, web.PageLogin)
		return
	}

	l.Info().Int64("user_id", user.ID).Msg("User logged in")
	session.AddFlash(w, r, session.FlashSuccess, noticeLoginSuccess)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

func HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, web.PageSignup)
}

// HandleSignup validates the sign-up form and registers the user.
func HandleSignup(userStore *users.Store, w http.ResponseWriter, r *http.Request) {
	l := logger.For(logger.HANDLER)

	form := validation.SignUpForm{
		Username:        r.PostFormValue("username"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm-password"),
	}
	if err := validation.ValidateSignUp(form); err != nil {
		session.AddFlash(w, r, session.FlashDanger, formNotice(err))
		http.Redirect(w, r, "/signup", http.StatusSeeOther)
		return
	}
	form = form.Trimmed()

	user, err := userStore.Create(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			session.AddFlash(w, r, session.FlashDanger, noticeUsernameTaken)
			renderPage(w, r, http.StatusOK, web.PageSignup)
			return
		}
		l.Error().Err(err).Msg("Failed to create user")
		session.AddFlash(w, r, session.FlashDanger, noticeSomethingFailed)
		renderPage(w, r, http.StatusInternalServerError, web.PageSignup)
		return
	}

	l.Info().Int64("user_id", user.ID).Msg("User registered")
	session.AddFlash(w, r, session.FlashSuccess, noticeSignupSuccess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleChatPage renders the landing page for logged-in users. Access is gated by
// middleware.RequireSession.
func HandleChatPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, web.PageChat)
}

func HandleLogout(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	sessionService.ClearSession(w, r)
	session.AddFlash(w, r, session.FlashInfo, noticeLoggedOut)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
