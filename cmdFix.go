package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"tricks_check/attribution"
	"tricks_check/report"
	"tricks_check/wcl"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlags struct {
	locale    string
	reportURL string
	html      bool
	indent    bool
}

var fixCmd = &cobra.Command{
	Use:   "fix [file]",
	Short: "Correct one snapshot (json or a saved report page) and print the result",
	Long: `Reads a snapshot from file, or stdin when file is "-" or missing.
Input starting with '<' is read as a report page.

  tricks_check fix page.htm --html > fixed.htm
  tricks_check fix snapshot.json --locale de`,
	Args: cobra.MaximumNArgs(1),
	RunE: fix,
}

func init() {
	fixCmd.Flags().StringVarP(&fixFlags.locale, "locale", "l", "", "locale code or tag (en, de, zh-TW, ...)")
	fixCmd.Flags().StringVarP(&fixFlags.reportURL, "report-url", "u", "", "report url, used for the locale and drill-down links")
	fixCmd.Flags().BoolVar(&fixFlags.html, "html", false, "print the corrected page instead of the json result (page input only)")
	fixCmd.Flags().BoolVar(&fixFlags.indent, "indent", true, "indent json output")
}

func fix(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		fs, err := os.Open(args[0])
		if err != nil {
			return errors.WithStack(err)
		}
		defer fs.Close()
		r = fs
	}

	br := bufio.NewReader(r)
	isHTML := false
	if b, err := br.Peek(512); len(b) > 0 {
		isHTML = bytes.HasPrefix(bytes.TrimSpace(b), []byte("<"))
	} else if err != nil && err != io.EOF {
		return errors.WithStack(err)
	}

	if fixFlags.html && !isHTML {
		return errors.New("--html needs a report page as input")
	}

	out := cmd.OutOrStdout()

	if isHTML {
		src, err := report.ParseHTML(br)
		if err != nil {
			return err
		}
		if !src.Complete() {
			return errors.WithStack(report.ErrNoTotals)
		}

		res, err := runFix(src, "", fixFlags.reportURL)
		if err != nil {
			return err
		}

		if !fixFlags.html {
			return report.EncodeResult(out, res, fixFlags.indent)
		}

		err = src.Apply(res)
		if err != nil {
			return err
		}
		return src.Render(out)
	}

	snap, err := report.DecodeSnapshot(br)
	if err != nil {
		return err
	}

	reportURL := snap.ReportURL
	if fixFlags.reportURL != "" {
		reportURL = fixFlags.reportURL
	}

	res, err := runFix(snap, snap.Locale, reportURL)
	if err != nil {
		return err
	}
	return report.EncodeResult(out, res, fixFlags.indent)
}

func runFix(src attribution.RowSource, locale string, reportURL string) (*attribution.Result, error) {
	loc, err := cliLocale(locale, reportURL)
	if err != nil {
		return nil, err
	}

	res, err := attribution.Fix(
		src,
		&attribution.Options{
			Locale:    loc,
			Logger:    logger,
			ReportURL: reportURL,
		},
	)
	if err != nil {
		return nil, err
	}

	for _, w := range res.Warnings {
		logger.Debug("warning", zap.Stringer("warning", w))
	}
	return res, nil
}

// cliLocale: --locale, then the snapshot's own locale, then the report host, then TRICKS_LOCALE.
func cliLocale(snapLocale, reportURL string) (*wcl.Locale, error) {
	for _, tag := range []string{fixFlags.locale, snapLocale} {
		if tag == "" {
			continue
		}
		loc, err := wcl.Resolve(tag)
		if err != nil {
			return nil, errors.Wrapf(err, "locale %q", tag)
		}
		return loc, nil
	}

	if reportURL != "" {
		if u, err := url.Parse(reportURL); err == nil && u.Host != "" {
			return wcl.Lookup(wcl.LocaleFromHost(u.Host))
		}
	}

	return wcl.Resolve(cfg.DefaultLocale)
}

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "List the known locales and their magnitude suffixes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, code := range wcl.Codes() {
			loc, err := wcl.Lookup(code)
			if err != nil {
				continue
			}

			alias := ""
			if loc.Code != code {
				alias = "-> " + loc.Code
			}
			fmt.Fprintf(out, "%-4s %-6s %-6s %s\n", code, loc.Millions, loc.Thousands, strings.TrimSpace(alias))
		}
	},
}
