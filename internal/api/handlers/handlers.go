package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/se360/ride-dispatch/internal/api/dto"
	apperrors "github.com/se360/ride-dispatch/pkg/errors"
	"github.com/se360/ride-dispatch/pkg/logger"
)

// respondError maps an error to the uniform JSON envelope. Known
// application errors carry their own status; anything else is a 500.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	if apperrors.IsAppError(err) {
		appErr := apperrors.GetAppError(err)
		c.JSON(appErr.Status, dto.ErrorResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}
	log.Error("Unhandled error", logger.Err(err))
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    "MALFORMED_INPUT",
		Message: err.Error(),
	})
}
