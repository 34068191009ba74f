package frontend

import (
	"net/http"
	"strings"

	"tricks_check/fixpool"

	"github.com/dpapathanasiou/go-recaptcha"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	websocketUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

type server struct {
	pool      *fixpool.Pool
	recaptcha bool
}

// Route registers the service. An empty recaptchaSecret turns the check off.
func Route(g *gin.Engine, pool *fixpool.Pool, recaptchaSecret string) {
	s := &server{
		pool:      pool,
		recaptcha: recaptchaSecret != "",
	}
	if s.recaptcha {
		recaptcha.Init(recaptchaSecret)
	}

	g.Use(gin.ErrorLogger())
	g.Use(gin.Recovery())

	g.NoMethod(func(c *gin.Context) { c.AbortWithStatus(http.StatusMethodNotAllowed) })
	g.NoRoute(func(c *gin.Context) { c.AbortWithStatus(http.StatusNotFound) })

	g.GET("/ws", s.routeWebsocket)

	api := g.Group("/api")
	api.GET("/locales", routeLocales)
	api.POST("/fix", s.routeFix)
}

func remoteAddr(c *gin.Context) string {
	var addr string
	if v := c.GetHeader("X-Forwarded-For"); v != "" {
		addr = strings.TrimSpace(strings.Split(v, ",")[0])
	}
	if addr == "" {
		if v := c.GetHeader("X-Real-Ip"); v != "" {
			addr = v
		}
	}
	if addr == "" {
		addr = c.Request.RemoteAddr
		if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
			addr = addr[:idx]
		}
	}
	return addr
}

func (s *server) confirm(c *gin.Context, token string) bool {
	if !s.recaptcha {
		return true
	}

	ok, err := recaptcha.Confirm(remoteAddr(c), token)
	return err == nil && ok
}
