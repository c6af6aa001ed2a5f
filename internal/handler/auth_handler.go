package handler

import (
	"net/http"

	"tikiti/config"
	"tikiti/internal/auth"
	"tikiti/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type userLookup interface {
	GetByEmail(email string) (*models.User, error)
}

type AuthHandler struct {
	cfg      *config.Config
	userRepo userLookup
}

func NewAuthHandler(cfg *config.Config, userRepo userLookup) *AuthHandler {
	return &AuthHandler{cfg: cfg, userRepo: userRepo}
}

// Login issues an access token for back-office users.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	token, err := auth.GenerateAccessToken(&h.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "role": u.Role})
}
