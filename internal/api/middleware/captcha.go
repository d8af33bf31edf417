package middleware

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/ylvish/torque/internal/captcha"
	"github.com/ylvish/torque/internal/config"
)

const (
	// ContextKeyIsHumanVerified holds the key for captcha status in Gin context.
	ContextKeyIsHumanVerified = "isHumanVerified"
)

// CaptchaMiddleware verifies Cloudflare Turnstile challenges sent in the
// X-Captcha-Token header. Verification failures do not abort the request;
// the rate limiter applies its stricter soft limit to unverified clients.
func CaptchaMiddleware(cfg *config.Config, verifier captcha.ITurnstileVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		challenge := c.GetHeader("X-Captcha-Token")

		isHuman := false
		if challenge != "" {
			verified, err := verifier.Verify(c.Request.Context(), challenge, clientIP)
			if err != nil {
				log.Printf("Error verifying Turnstile token: %v", err)
			} else if verified {
				isHuman = true
			}
		}

		c.Set(ContextKeyIsHumanVerified, isHuman)
		c.Next()
	}
}
