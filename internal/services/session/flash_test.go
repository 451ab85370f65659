package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deepgram/chatdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	defer config.SetSessionCookieName("flash_test")()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/signup", nil)
	AddFlash(w, r, FlashDanger, "Passwords do not match.")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "flash_test_flash", cookies[0].Name)

	// next request carries the cookie and consumes it
	next := httptest.NewRequest(http.MethodGet, "/signup", nil)
	next.AddCookie(cookies[0])
	nw := httptest.NewRecorder()

	flashes := PopFlashes(nw, next)
	assert.Equal(t, []Flash{{Category: FlashDanger, Message: "Passwords do not match."}}, flashes)

	expired := nw.Result().Cookies()
	require.Len(t, expired, 1)
	assert.True(t, expired[0].MaxAge < 0)

	assert.Empty(t, PopFlashes(httptest.NewRecorder(), next))
}

func TestFlashSameRequest(t *testing.T) {
	defer config.SetSessionCookieName("flash_test")()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	AddFlash(w, r, FlashInfo, "first")
	AddFlash(w, r, FlashDanger, "second")

	flashes := PopFlashes(w, r)
	assert.Equal(t, []Flash{
		{Category: FlashInfo, Message: "first"},
		{Category: FlashDanger, Message: "second"},
	}, flashes)
}

func TestPopFlashesIgnoresGarbage(t *testing.T) {
	defer config.SetSessionCookieName("flash_test")()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "flash_test_flash", Value: "%%%"})

	assert.Nil(t, PopFlashes(httptest.NewRecorder(), r))
}
