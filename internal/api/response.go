package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errInvalidID = errors.New("invalid id")

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func Unauthorized(c *gin.Context)           { Error(c, http.StatusUnauthorized, "unauthorized") }
func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func Forbidden(c *gin.Context, msg string)  { Error(c, http.StatusForbidden, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }
func TooMany(c *gin.Context, msg string)    { Error(c, http.StatusTooManyRequests, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }

// lookupError 把查询简历时的错误映射为响应。
func lookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid resume id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "resume not found")
	default:
		Internal(c, "failed to query resume")
	}
}
