package share

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// InitSentry is a no-op client when dsn is empty.
func InitSentry(dsn string) error {
	err := sentry.Init(
		sentry.ClientOptions{
			Dsn:           dsn,
			HTTPTransport: new(http.Transport),
		},
	)
	return errors.WithStack(err)
}

// Report prints err with its stack and sends it to sentry.
func Report(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
	fmt.Printf("%+v\n", errors.WithStack(err))
}
