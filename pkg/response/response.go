package response

import (
	"errors"
	"net/http"

	appErr "satta-service/pkg/errors"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"msg"`
}

func Success(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data, "")
}

func SuccessWithMsg(c *gin.Context, data interface{}, msg string) {
	JSON(c, http.StatusOK, data, msg)
}

func Error(c *gin.Context, status int, msg string) {
	JSON(c, status, gin.H{}, msg)
}

// Fail writes err with the status its error class maps to. data, when
// non-nil, is sent alongside so rejected moves still carry the state.
func Fail(c *gin.Context, err error, data interface{}) {
	JSON(c, StatusFor(err), data, err.Error())
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, appErr.ErrInvalidMove):
		return http.StatusConflict
	case appErr.IsValidation(err), errors.Is(err, appErr.ErrUnsupportedAction):
		return http.StatusBadRequest
	case errors.Is(err, appErr.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, appErr.ErrUnauthorized), errors.Is(err, appErr.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, appErr.ErrLeaderboardOffline):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func JSON(c *gin.Context, status int, data interface{}, msg string) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(status, Body{
		Code: status,
		Data: data,
		Msg:  msg,
	})
}
