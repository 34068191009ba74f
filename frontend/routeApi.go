package frontend

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"tricks_check/attribution"
	"tricks_check/fixpool"
	"tricks_check/numtext"
	"tricks_check/report"
	"tricks_check/share"
	"tricks_check/wcl"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const maxBodySize = 4 << 20

type localeInfo struct {
	Code      string `json:"code"`
	Millions  string `json:"millions"`
	Thousands string `json:"thousands"`
}

func routeLocales(c *gin.Context) {
	codes := wcl.Codes()
	r := make([]localeInfo, 0, len(codes))
	for _, code := range codes {
		loc, err := wcl.Lookup(code)
		if err != nil {
			continue
		}
		r = append(
			r,
			localeInfo{
				Code:      code,
				Millions:  loc.Millions,
				Thousands: loc.Thousands,
			},
		)
	}

	writeJSON(c, http.StatusOK, r)
}

// routeFix takes a snapshot as JSON, or a report page as text/html. The html form is
// answered with the corrected page.
func (s *server) routeFix(c *gin.Context) {
	if !s.confirm(c, c.GetHeader("X-Recaptcha-Token")) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	if strings.HasPrefix(c.ContentType(), "text/html") {
		s.fixHTML(c, body)
		return
	}

	snap, err := report.DecodeSnapshot(bytes.NewReader(body))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if snap.Locale == "" && snap.ReportURL == "" {
		snap.Locale = requestLocale(c).Code
	}

	res, err := s.pool.Submit(c.Request.Context(), snap)
	if err != nil {
		writeFixError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, res)
}

func (s *server) fixHTML(c *gin.Context, body []byte) {
	src, err := report.ParseHTML(bytes.NewReader(body))
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, err)
		return
	}
	if !src.Complete() {
		writeError(c, http.StatusUnprocessableEntity, report.ErrNoTotals)
		return
	}

	reportURL := c.Query("report_url")
	locale := c.Query("locale")
	if locale == "" && reportURL == "" {
		locale = requestLocale(c).Code
	}

	snap, err := src.Snapshot(locale, reportURL)
	if err != nil {
		writeError(c, http.StatusUnprocessableEntity, err)
		return
	}

	res, err := s.pool.Submit(c.Request.Context(), snap)
	if err != nil {
		writeFixError(c, err)
		return
	}

	err = src.Apply(res)
	if err != nil {
		share.Report(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err = src.Render(&buf)
	if err != nil {
		share.Report(err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func requestLocale(c *gin.Context) *wcl.Locale {
	if q := c.Query("locale"); q != "" {
		if loc, err := wcl.Resolve(q); err == nil {
			return loc
		}
	}
	return wcl.ResolveAcceptLanguage(c.GetHeader("Accept-Language"))
}

func writeFixError(c *gin.Context, err error) {
	switch {
	case share.IsContextClosedError(err):
		c.Abort()
	case errors.Is(err, fixpool.ErrAlreadyCorrected):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, fixpool.ErrInvalidSnapshot),
		errors.Is(err, attribution.ErrNoRows),
		errors.Is(err, attribution.ErrGrandTotal),
		errors.Is(err, attribution.ErrDuration),
		errors.Is(err, numtext.ErrFormat):
		writeError(c, http.StatusBadRequest, err)
	default:
		share.Report(err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

func writeError(c *gin.Context, status int, err error) {
	writeJSON(
		c,
		status,
		struct {
			Error string `json:"error"`
		}{
			Error: err.Error(),
		},
	)
	c.Abort()
}

func writeJSON(c *gin.Context, status int, v interface{}) {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		share.Report(errors.WithStack(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, "application/json; charset=utf-8", b)
}
