package api

import (
	"net/http"

	"mesob/internal/auth"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"role":      user.Role,
		},
	})
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.auth.CreateUser(req.Email, req.FullName, req.Role, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.auth.ListUsers()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// currentUserID returns the authenticated user's ID, 0 if unauthenticated
func currentUserID(c *gin.Context) uint {
	if claims := auth.CurrentClaims(c); claims != nil {
		return claims.UserID
	}
	return 0
}

// currentActor returns the authenticated user's email for audit fields
func currentActor(c *gin.Context) string {
	if claims := auth.CurrentClaims(c); claims != nil {
		return claims.Email
	}
	return "system"
}

func (s *Server) handleMetricsSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot())
}
