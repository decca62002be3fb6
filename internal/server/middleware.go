package server

import (
	"github.com/gin-gonic/gin"
	"github.com/vendorly/invoicedesk/internal/actor"
	authdomain "github.com/vendorly/invoicedesk/internal/auth/domain"
	"github.com/vendorly/invoicedesk/internal/auth/session"
)

const currentUserKey = "current_user"

// AuthRequired resolves the session cookie into an authenticated user and
// places the acting identity on the request context.
func AuthRequired(authSvc authdomain.Service, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(currentUserKey, user)
		ctx := actor.WithActor(c.Request.Context(), actor.Actor{
			ID:   user.ID,
			Role: actor.Role(user.Role),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates a route to admin accounts. It must run after
// AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		act, ok := actor.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !act.IsAdmin() {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*authdomain.User)
	return user, ok
}
