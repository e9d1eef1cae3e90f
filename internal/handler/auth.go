package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"canteen/internal/session"
)

// Login checks the static admin credentials and issues the session cookie.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, _, err := session.Issue(req.Username, h.cfg.SessionIssuer, h.cfg.SessionSecret)
	if err != nil {
		internalError(c, "issue session", err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(session.TTL.Seconds()), "/", "", h.cfg.Production(), true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", h.cfg.Production(), true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
