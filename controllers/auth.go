package controllers

import (
	"log/slog"
	"net/http"

	"tableorder-backend/services"
	"tableorder-backend/utils"

	"github.com/gin-gonic/gin"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	auth   *services.AuthService
	logger *slog.Logger
}

func NewAuthController(auth *services.AuthService, logger *slog.Logger) *AuthController {
	return &AuthController{auth: auth, logger: logger}
}

// Register creates a manager account and signs it in.
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	res, err := ac.auth.Register(c.Request.Context(), services.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Role:     input.Role,
	})
	if err != nil {
		respondWithServiceError(c, ac.logger, err, "Error creating manager")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Manager created successfully",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"manager":   res.Manager,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	res, err := ac.auth.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondWithServiceError(c, ac.logger, err, "Error during login")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
		"manager":   res.Manager,
	})
}

// Profile returns the manager resolved by the auth middleware.
func (ac *AuthController) Profile(c *gin.Context) {
	manager, ok := utils.CurrentManager(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Manager not found in context")
		return
	}
	c.JSON(http.StatusOK, manager)
}
