package fixpool

import (
	"context"
	"io"
	"time"

	"tricks_check/attribution"
	"tricks_check/share"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var websockEmptyClosure = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")

// Do serves one websocket client: ready, then a snapshot in, then waiting/start events
// and finally complete or error.
func (p *Pool) Do(ctx context.Context, ws *websocket.Conn) {
	ctx, ctxCancel := context.WithCancel(ctx)
	defer ctxCancel()

	q := &queueData{
		ws:   ws,
		snap: new(attribution.Snapshot),
	}
	q.Ready()

	ws.SetReadDeadline(time.Now().Add(10 * time.Second))
	err := ws.ReadJSON(q.snap)
	if err != nil {
		q.Error(errors.WithStack(ErrInvalidSnapshot))
		q.Close()
		return
	}
	ws.SetReadDeadline(time.Time{})

	go func() {
		for {
			_, r, err := ws.NextReader()
			if err != nil {
				ctxCancel()
				return
			}

			_, err = io.Copy(io.Discard, r)
			if err != nil && err != io.EOF {
				ctxCancel()
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				q.lock.Lock()
				err := ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second))
				q.lock.Unlock()
				if err != nil {
					if err != websocket.ErrCloseSent {
						share.Report(errors.WithStack(err))
					}
					ctxCancel()
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	////////////////////////////////////////////////////////////////////////////////////////////////////

	res, err := p.submit(ctx, q)
	switch {
	case err == nil:
		q.Succ(res)
	case share.IsContextClosedError(err):
		return
	default:
		p.logger.Info("fix failed", zap.Error(err))
		q.Error(err)
	}

	q.Close()
}
