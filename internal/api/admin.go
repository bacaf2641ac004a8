package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// adminLogin handles staff login for the administrative panel
func (h *Handler) adminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, admin, err := h.authService.LoginAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"name":  admin.Name,
	})
}

// adminListOrders handles the full order book listing
func (h *Handler) adminListOrders(c *gin.Context) {
	orders, err := h.adminService.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// adminReport handles the totals and per-day breakdown
func (h *Handler) adminReport(c *gin.Context) {
	report, err := h.adminService.GetReport(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
