package fixpool

import (
	"context"
	"sync"

	"tricks_check/attribution"
	"tricks_check/share"
	"tricks_check/wcl"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type queueResult struct {
	res *attribution.Result
	err error
}

type queueData struct {
	lock sync.Mutex
	ws   *websocket.Conn // nil for Submit

	snap  *attribution.Snapshot
	loc   *wcl.Locale
	token string

	ctx  context.Context
	resp chan queueResult
}

var (
	eventReady = []byte(`{"event":"ready"}`)
	eventStart = []byte(`{"event":"start"}`)
)

func (q *queueData) write(msg []byte) {
	if q.ws == nil {
		return
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	err := q.ws.WriteMessage(websocket.TextMessage, msg)
	if err != nil && err != websocket.ErrCloseSent {
		share.Report(errors.WithStack(err))
	}
}

func (q *queueData) writeJSON(v interface{}) {
	if q.ws == nil {
		return
	}

	b, err := jsoniter.Marshal(v)
	if err != nil {
		share.Report(errors.WithStack(err))
		return
	}
	q.write(b)
}

func (q *queueData) Ready() {
	q.write(eventReady)
}

func (q *queueData) Reorder(order int) {
	q.writeJSON(
		struct {
			Event string `json:"event"`
			Data  int    `json:"data"`
		}{
			Event: "waiting",
			Data:  order,
		},
	)
}

func (q *queueData) Start() {
	q.write(eventStart)
}

func (q *queueData) Error(err error) {
	q.writeJSON(
		struct {
			Event string `json:"event"`
			Data  string `json:"data"`
		}{
			Event: "error",
			Data:  errors.Cause(err).Error(),
		},
	)
}

func (q *queueData) Succ(r *attribution.Result) {
	q.writeJSON(
		struct {
			Event string              `json:"event"`
			Data  *attribution.Result `json:"data"`
		}{
			Event: "complete",
			Data:  r,
		},
	)
}

func (q *queueData) Close() {
	if q.ws == nil {
		return
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	err := q.ws.WriteMessage(websocket.CloseMessage, websockEmptyClosure)
	if err != nil && err != websocket.ErrCloseSent {
		share.Report(errors.WithStack(err))
	}
}
