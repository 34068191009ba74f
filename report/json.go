package report

import (
	"io"

	"tricks_check/attribution"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func DecodeSnapshot(r io.Reader) (*attribution.Snapshot, error) {
	var s attribution.Snapshot

	err := json.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &s, nil
}

func EncodeResult(w io.Writer, res *attribution.Result, indent bool) error {
	je := json.NewEncoder(w)
	if indent {
		je.SetIndent("", "    ")
	}
	return errors.WithStack(je.Encode(res))
}

func EncodeSnapshot(w io.Writer, s *attribution.Snapshot, indent bool) error {
	je := json.NewEncoder(w)
	if indent {
		je.SetIndent("", "    ")
	}
	return errors.WithStack(je.Encode(s))
}
