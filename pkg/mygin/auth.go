package mygin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthorizeOption struct {
	Member bool
	Msg    string
	// Verify resolves a bearer token to the user and its session id.
	Verify func(token string) (user any, session string, err error)
}

func Authorize(opt AuthorizeOption) func(*gin.Context) {
	return func(c *gin.Context) {
		commonErr := ErrInfo{
			Code: http.StatusUnauthorized,
			Msg:  opt.Msg,
		}
		var isLogin bool

		// API鉴权
		header := c.GetHeader("Authorization")
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); header != "" && token != "" && opt.Verify != nil {
			user, session, err := opt.Verify(token)
			if err == nil {
				isLogin = true
				c.Set(CtxKeyAuthorizedUser, user)
				c.Set(CtxKeySession, session)
			} else {
				c.Error(err)
			}
		}

		// 未登录且需要登录
		if !isLogin && opt.Member {
			ShowErrorPage(c, commonErr, false)
			return
		}
	}
}
