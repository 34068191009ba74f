package frontend

import (
	"time"

	"tricks_check/share"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func (s *server) routeWebsocket(c *gin.Context) {
	ws, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		share.Report(errors.WithStack(err))
		return
	}
	defer ws.Close()

	if s.recaptcha {
		ws.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, msg, err := ws.ReadMessage()
		if err != nil {
			return
		}
		if !s.confirm(c, string(msg)) {
			return
		}
	}

	s.pool.Do(c.Request.Context(), ws)

	time.Sleep(time.Second)
}
