// Package mygin holds the gin middlewares and response helpers of the stub backend.
package mygin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/naiba/gymkit/model"
)

const (
	CtxKeyAuthorizedUser = "ckau"
	CtxKeySession        = "cks"
	CtxKeyMatchedPath    = "MatchedPath"
)

// RecordPath stores the route template of the request, or the raw
// path with params replaced when no route matched.
func RecordPath(c *gin.Context) {
	if full := c.FullPath(); full != "" {
		c.Set(CtxKeyMatchedPath, full)
		return
	}
	url := c.Request.URL.Path
	for _, p := range c.Params {
		url = strings.Replace(url, p.Value, ":"+p.Key, 1)
	}
	c.Set(CtxKeyMatchedPath, url)
}

func MatchedPath(c *gin.Context) string {
	if p := c.GetString(CtxKeyMatchedPath); p != "" {
		return p
	}
	return "unmatched"
}

// Wrapped writes the {status, message, data} envelope.
func Wrapped[T any](c *gin.Context, code int, message string, data T) {
	c.JSON(code, model.WrappedResponse[T]{Status: true, Message: message, Data: data})
}

// Rejected writes a 2xx envelope with status false, which is how the
// backend reports some business failures.
func Rejected(c *gin.Context, message string) {
	c.JSON(http.StatusOK, model.WrappedResponse[any]{Message: message})
}

func ValidationFailed(c *gin.Context, errs map[string][]string) {
	ShowErrorPage(c, ErrInfo{
		Code:   http.StatusUnprocessableEntity,
		Msg:    "The given data was invalid.",
		Errors: errs,
	}, false)
}

func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, model.WrappedResponse[any]{Message: "Not found."})
}
