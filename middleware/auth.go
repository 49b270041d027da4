package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/picstash/picstash/utils"
)

const (
	// SessionCookieName is the cookie carrying the signed session id.
	SessionCookieName = "picstash_session"
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextSessionIDKey stores the server-side session id for logout.
	ContextSessionIDKey = "session_id"
)

// SessionRequired gates protected routes on an authenticated session.
// Requests without one are redirected to /login before any handler
// side effects can happen.
func SessionRequired(store *utils.SessionStore, secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		cookie, err := ctx.Cookie(SessionCookieName)
		if err != nil || cookie == "" {
			redirectToLogin(ctx)
			return
		}

		sid, err := utils.ParseSessionID(secret, cookie)
		if err != nil {
			redirectToLogin(ctx)
			return
		}

		sess, ok := store.Get(sid)
		if !ok {
			redirectToLogin(ctx)
			return
		}

		ctx.Set(ContextUserIDKey, sess.UserID)
		ctx.Set(ContextUsernameKey, sess.Username)
		ctx.Set(ContextSessionIDKey, sid)
		ctx.Next()
	}
}

func redirectToLogin(ctx *gin.Context) {
	ctx.Redirect(http.StatusFound, "/login")
	ctx.Abort()
}

// CurrentUser extracts the authenticated identity placed by SessionRequired.
func CurrentUser(ctx *gin.Context) (uint, string, bool) {
	idVal, ok := ctx.Get(ContextUserIDKey)
	if !ok {
		return 0, "", false
	}
	id, ok := idVal.(uint)
	if !ok || id == 0 {
		return 0, "", false
	}
	nameVal, ok := ctx.Get(ContextUsernameKey)
	if !ok {
		return 0, "", false
	}
	name, _ := nameVal.(string)
	if name == "" {
		return 0, "", false
	}
	return id, name, true
}
