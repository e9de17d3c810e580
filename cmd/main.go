package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"browser-env-patch/config"
	"browser-env-patch/inject"
	"browser-env-patch/logger"
	"browser-env-patch/patch"
	"browser-env-patch/sandbox"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config file (optional)")
	live := flag.Bool("live", false, "launch a browser and verify the patch in a real page")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Trap interrupts to exit cleanly and close the browser.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Load optional .env to ease local development.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zapLogger.Sync()
	logr := zapLogger.Sugar()

	profile := cfg.PatchProfile()
	for _, o := range patch.Overrides(profile) {
		logr.Infow("override", "target", o.Target, "member", o.Member, "reports", o.Reports)
	}

	ok := runSandboxCheck(profile, logr)
	if *live {
		liveOK := runLiveCheck(ctx, cfg, profile, logr)
		ok = ok && liveOK
	}

	if !ok {
		logr.Error("environment patch verification failed")
		zapLogger.Sync()
		os.Exit(1)
	}
	logr.Info("environment patch verified")
}

// runSandboxCheck installs the patch into the goja mock environment and
// runs every probe against it.
func runSandboxCheck(profile patch.Profile, logr *zap.SugaredLogger) bool {
	env, err := sandbox.New(logr.Desugar())
	if err != nil {
		logr.Errorf("sandbox: %v", err)
		return false
	}
	if err := env.Install(profile); err != nil {
		logr.Errorf("sandbox install: %v", err)
		return false
	}

	ok := true
	for _, probe := range inject.Probes(profile) {
		v, err := env.Eval(probe.Expr)
		if err != nil {
			logr.Errorw("sandbox probe error", "probe", probe.Name, "error", err)
			ok = false
			continue
		}
		got, err := json.Marshal(v.Export())
		if err != nil {
			logr.Errorw("sandbox probe marshal", "probe", probe.Name, "error", err)
			ok = false
			continue
		}
		if string(got) != probe.Want {
			logr.Warnw("sandbox probe failed", "probe", probe.Name, "want", probe.Want, "got", string(got))
			ok = false
			continue
		}
		logr.Debugw("sandbox probe passed", "probe", probe.Name, "value", string(got))
	}

	if ok {
		logr.Info("sandbox check passed")
	}
	return ok
}

// runLiveCheck launches a browser with the usual low-signal flag set,
// applies the patch to a fresh page, and reads every member back.
func runLiveCheck(ctx context.Context, cfg *config.Config, profile patch.Profile, logr *zap.SugaredLogger) bool {
	launchURL, err := launcher.New().
		Bin(cfg.Browser.Bin).
		Leakless(false).
		Headless(cfg.Browser.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-extensions").
		Set("disable-component-update").
		Set("window-size", fmt.Sprintf("%d,%d", cfg.Browser.Width, cfg.Browser.Height)).
		Set("user-agent", cfg.Browser.UserAgent).
		Launch()
	if err != nil {
		logr.Errorf("launch browser: %v", err)
		return false
	}

	browser := rod.New().ControlURL(launchURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		logr.Errorf("connect browser: %v", err)
		return false
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		logr.Errorf("open page: %v", err)
		return false
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Browser.Width,
		Height:            cfg.Browser.Height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		logr.Warnf("set viewport: %v", err)
	}

	if err := inject.Apply(page, profile, logr); err != nil {
		logr.Errorf("apply patch: %v", err)
		return false
	}

	report, err := inject.Verify(page, profile, logr)
	if err != nil {
		logr.Errorf("verify patch: %v", err)
		return false
	}

	for _, c := range report.Results {
		if c.Passed {
			logr.Infow("live probe passed", "probe", c.Name, "value", c.Got)
		} else {
			logr.Warnw("live probe failed", "probe", c.Name, "want", c.Want, "got", c.Got)
		}
	}

	if report.Passed() {
		logr.Info("live check passed")
		return true
	}
	return false
}
