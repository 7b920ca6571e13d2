package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mailbridge/internal/model"
)

const settingsURL = "https://app.example.com/settings"

type fakeLinkService struct {
	authURL       string
	acc           *model.MailboxAccount
	err           error
	callbackCalls int
}

func (f *fakeLinkService) AuthCodeURL(authID string) string {
	return f.authURL + "&state=" + authID
}

func (f *fakeLinkService) HandleCallback(ctx context.Context, code, state string) (*model.MailboxAccount, error) {
	f.callbackCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.acc, nil
}

func newCallbackRouter(link *fakeLinkService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewOAuthHandler(link, settingsURL, zap.NewNop())
	r := gin.New()
	r.GET("/oauth/gmail/callback", h.GmailCallback)
	return r
}

func doCallback(t *testing.T, r *gin.Engine, query string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/gmail/callback"+query, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestGmailCallbackProviderError(t *testing.T) {
	link := &fakeLinkService{}
	r := newCallbackRouter(link)

	w := doCallback(t, r, "?error=access_denied")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, settingsURL+"?mailbox=error&reason=error-passthrough", w.Header().Get("Location"))
	assert.Zero(t, link.callbackCalls)
}

func TestGmailCallbackMissingCode(t *testing.T) {
	link := &fakeLinkService{}
	r := newCallbackRouter(link)

	w := doCallback(t, r, "?state=u1")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, settingsURL+"?mailbox=error&reason=missing_params", w.Header().Get("Location"))
	assert.Zero(t, link.callbackCalls)
}

func TestGmailCallbackMissingState(t *testing.T) {
	link := &fakeLinkService{}
	r := newCallbackRouter(link)

	w := doCallback(t, r, "?code=abc")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, settingsURL+"?mailbox=error&reason=missing_params", w.Header().Get("Location"))
	assert.Zero(t, link.callbackCalls)
}

func TestGmailCallbackLinkFailureCollapsesReason(t *testing.T) {
	link := &fakeLinkService{err: errors.New("failed to get profile: googleapi: Error 500")}
	r := newCallbackRouter(link)

	w := doCallback(t, r, "?code=abc&state=u1")

	assert.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	assert.Equal(t, settingsURL+"?mailbox=error&reason=token_exchange", loc)
	// internal detail must never leak into the redirect
	assert.NotContains(t, loc, "googleapi")
	assert.Equal(t, 1, link.callbackCalls)
}

func TestGmailCallbackSuccess(t *testing.T) {
	link := &fakeLinkService{acc: &model.MailboxAccount{UserID: 7, Email: "a@x.com"}}
	r := newCallbackRouter(link)

	w := doCallback(t, r, "?code=abc&state=u1")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, settingsURL+"?mailbox=connected", w.Header().Get("Location"))
	assert.Equal(t, 1, link.callbackCalls)
}

func TestGmailConnectRedirectsWithAuthID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	link := &fakeLinkService{authURL: "https://accounts.google.com/o/oauth2/v2/auth?access_type=offline"}
	h := NewOAuthHandler(link, settingsURL, zap.NewNop())

	r := gin.New()
	r.GET("/oauth/gmail/connect", func(c *gin.Context) {
		c.Set("auth_id", "u1")
		h.GmailConnect(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/gmail/connect", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "state=u1")
}

func TestGmailConnectWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewOAuthHandler(&fakeLinkService{}, settingsURL, zap.NewNop())

	r := gin.New()
	r.GET("/oauth/gmail/connect", h.GmailConnect)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/gmail/connect", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
