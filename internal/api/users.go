package api

import (
	"net/http"

	"orders-api/internal/service"

	"github.com/gin-gonic/gin"
)

// registerUser handles customer registration
func (h *Handler) registerUser(c *gin.Context) {
	var req struct {
		Name     string  `json:"name"`
		Email    string  `json:"email" binding:"required,email"`
		Password string  `json:"password"`
		Phone    *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.RegisterUser(c.Request.Context(), req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// loginUser handles customer login
func (h *Handler) loginUser(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, user, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// getUser handles customer profile reads
func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// recoverPassword issues a recovery token; it never reveals whether the
// email exists.
func (h *Handler) recoverPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.authService.RecoverPassword(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// resetPassword consumes a recovery token
func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and new password are required"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// createAddress handles saving a profile address
func (h *Handler) createAddress(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		service.AddressRequest
		Primary bool `json:"primary"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	addr, err := h.addressService.CreateAddress(c.Request.Context(), userID, &req.AddressRequest, req.Primary)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": addr.ID})
}

// listAddresses handles a user's saved addresses
func (h *Handler) listAddresses(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	addrs, err := h.addressService.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, addrs)
}
