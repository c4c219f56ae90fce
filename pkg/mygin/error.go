package mygin

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrInfo struct {
	Code   int
	Title  string
	Msg    string
	Errors map[string][]string
}

var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body><h1>{{.Title}}</h1><p>{{.Msg}}</p></body>
</html>`))

// ShowErrorPage answers with an HTML page when isPage, else with JSON.
func ShowErrorPage(c *gin.Context, i ErrInfo, isPage bool) {
	if isPage {
		if i.Title == "" {
			i.Title = http.StatusText(i.Code)
		}
		c.Status(i.Code)
		c.Header("Content-Type", "text/html; charset=utf-8")
		if err := errorPage.Execute(c.Writer, i); err != nil {
			c.Error(err)
		}
	} else {
		body := gin.H{"message": i.Msg}
		if len(i.Errors) > 0 {
			body["errors"] = i.Errors
		}
		c.JSON(i.Code, body)
	}
	c.Abort()
}
