package session

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/deepgram/chatdesk/internal/config"
)

// Flash categories, used by the templates as CSS classes.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AddFlash queues a notice for the next page. Notices already queued by this request or the
// previous one are kept.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	flashes := append(readFlashes(r), Flash{Category: category, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(data)

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetFlashCookieName(),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
	})

	// later AddFlash calls in the same request must see this one
	setRequestCookie(r, config.GetFlashCookieName(), value)
}

// PopFlashes returns the queued notices and expires the cookie holding them.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetFlashCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   config.GetSessionCookieSecure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	setRequestCookie(r, config.GetFlashCookieName(), "")
	return flashes
}

func readFlashes(r *http.Request) []Flash {
	cookie, err := r.Cookie(config.GetFlashCookieName())
	if err != nil || cookie.Value == "" {
		return nil
	}

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}

func setRequestCookie(r *http.Request, name, value string) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name != name {
			r.AddCookie(c)
		}
	}
	if value != "" {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}
