// Package inject installs the environment patch into live rod pages and
// verifies it took.
package inject

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"browser-env-patch/patch"
)

// Apply registers the patch so it runs in every future document of the page
// and also evaluates it in the current document. Call it once per page,
// before navigation; the injected code itself is safe to re-run.
func Apply(page *rod.Page, p patch.Profile, log *zap.SugaredLogger) error {
	script, err := patch.Script(p)
	if err != nil {
		return err
	}

	if _, err := page.EvalOnNewDocument(script); err != nil {
		return fmt.Errorf("inject: register init script: %w", err)
	}

	// Cover the document that is already open; init scripts only fire on
	// the next navigation.
	if _, err := page.Evaluate(rod.Eval("() => {\n" + script + "\n}")); err != nil {
		return fmt.Errorf("inject: patch current document: %w", err)
	}

	if log != nil {
		for _, o := range patch.Overrides(p) {
			log.Debugw("override installed", "target", o.Target, "member", o.Member, "reports", o.Reports)
		}
	}
	return nil
}

// CheckResult is the outcome of a single probe.
type CheckResult struct {
	Name   string
	Want   string
	Got    string
	Passed bool
}

// Report collects probe outcomes for one page.
type Report struct {
	Results []CheckResult
}

// Passed reports whether every probe matched.
func (r Report) Passed() bool {
	for _, c := range r.Results {
		if !c.Passed {
			return false
		}
	}
	return len(r.Results) > 0
}

// Verify evaluates each probe in the page and compares the JSON result
// against the expected value. An evaluation error fails that probe but the
// remaining probes still run.
func Verify(page *rod.Page, p patch.Profile, log *zap.SugaredLogger) (Report, error) {
	var report Report
	for _, probe := range Probes(p) {
		res, err := page.Eval("() => " + probe.Expr)
		if err != nil {
			report.Results = append(report.Results, CheckResult{
				Name: probe.Name,
				Want: probe.Want,
				Got:  fmt.Sprintf("eval error: %v", err),
			})
			continue
		}
		// Run the expectation through gson too, so both sides come out of
		// the same serializer.
		want := gson.NewFrom(probe.Want).JSON("", "")
		got := res.Value.JSON("", "")
		report.Results = append(report.Results, CheckResult{
			Name:   probe.Name,
			Want:   want,
			Got:    got,
			Passed: got == want,
		})
	}

	if log != nil {
		for _, c := range report.Results {
			if c.Passed {
				log.Debugw("probe passed", "probe", c.Name, "value", c.Got)
			} else {
				log.Warnw("probe failed", "probe", c.Name, "want", c.Want, "got", c.Got)
			}
		}
	}
	return report, nil
}
