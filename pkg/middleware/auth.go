package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/soaco-industrial/projection-service/pkg/errors"
)

// Profile context and header names. The API sits behind the company gateway,
// which authenticates the session and forwards the resolved profile.
const (
	ContextKeyUserProfile = "userProfile"
	ContextKeyUsername    = "username"

	HeaderUserProfile = "X-User-Profile"
	HeaderUsername    = "X-Username"
)

// ProfileAuthConfig holds configuration for profile authorization middleware
type ProfileAuthConfig struct {
	// Required when true, requests without a profile header are rejected
	Required bool

	// DefaultProfile is used when no header is present and Required is false
	DefaultProfile string
}

// ProfileAuth extracts the caller's profile from headers and stores it on the
// request context for RequireProfile checks downstream.
func ProfileAuth(config *ProfileAuthConfig) gin.HandlerFunc {
	if config == nil {
		config = &ProfileAuthConfig{}
	}

	return func(c *gin.Context) {
		profile := c.GetHeader(HeaderUserProfile)
		if profile == "" {
			if config.Required {
				AbortWithAppError(c, errors.ErrUnauthorized("profile header required"))
				return
			}
			profile = config.DefaultProfile
		}

		c.Set(ContextKeyUserProfile, profile)
		if username := c.GetHeader(HeaderUsername); username != "" {
			c.Set(ContextKeyUsername, username)
		}

		c.Next()
	}
}

// RequireProfile rejects requests whose profile is not in the allowed set.
func RequireProfile(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		allowedSet[p] = true
	}

	return func(c *gin.Context) {
		profile := GetUserProfile(c)
		if profile == "" {
			AbortWithAppError(c, errors.ErrUnauthorized("profile header required"))
			return
		}
		if !allowedSet[profile] {
			AbortWithAppError(c, errors.ErrForbidden("profile "+profile+" cannot perform this operation"))
			return
		}
		c.Next()
	}
}

// GetUserProfile extracts the caller profile from context
func GetUserProfile(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyUserProfile); exists {
		if profile, ok := val.(string); ok {
			return profile
		}
	}
	return ""
}

// GetUsername extracts the caller username from context
func GetUsername(c *gin.Context) string {
	if val, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := val.(string); ok {
			return username
		}
	}
	return ""
}
