package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"tableorder-backend/services"
	"tableorder-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondWithServiceError writes the client-safe message of a service error
// and hides everything else behind a 500.
func respondWithServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		utils.RespondWithError(c, svcErr.Status(), svcErr.Message)
		return
	}
	logger.Error(fallback, "method", c.Request.Method, "path", c.FullPath(), "error", err)
	utils.RespondWithError(c, http.StatusInternalServerError, fallback)
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID", label))
		return uuid.Nil, false
	}
	return id, true
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}
