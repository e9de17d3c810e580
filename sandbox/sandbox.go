// Package sandbox evaluates the generated patch inside a goja VM seeded with
// a mock navigator and WebGL prototypes, so the overrides can be exercised
// without launching a browser.
package sandbox

import (
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"browser-env-patch/patch"
)

// Env is a synthetic page environment. The baseline values are chosen to
// look like an unpatched automated browser (webdriver exposed, no
// languages), distinct from anything a profile would report, so a test can
// tell patched from unpatched state for every member.
type Env struct {
	vm  *goja.Runtime
	log *zap.Logger
}

// baselineJS sets up the mock environment. navigator members are
// configurable accessors, the same shape the patch meets in a real page.
// getParameter tags its result with the numeric code so delegation through
// the wrapper is observable.
const baselineJS = `
var navigator = {};
Object.defineProperty(navigator, 'webdriver', { get: () => true, configurable: true });
Object.defineProperty(navigator, 'languages', { get: () => [], configurable: true });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 2, configurable: true });
Object.defineProperty(navigator, 'deviceMemory', { get: () => 2, configurable: true });
Object.defineProperty(navigator, 'plugins', { get: () => [{ name: 'Mock Plugin' }], configurable: true });

function WebGLRenderingContext() {}
WebGLRenderingContext.prototype.getParameter = function (parameter) {
	return 'mock-webgl:' + parameter;
};

function WebGL2RenderingContext() {}
WebGL2RenderingContext.prototype.getParameter = function (parameter) {
	return 'mock-webgl2:' + parameter;
};
`

// New builds a fresh environment. Each Env owns its own VM; nothing is
// shared between instances.
func New(logger *zap.Logger) (*Env, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	vm := goja.New()
	if _, err := vm.RunString(baselineJS); err != nil {
		return nil, fmt.Errorf("sandbox: seed environment: %w", err)
	}
	return &Env{vm: vm, log: logger.Named("sandbox")}, nil
}

// Install renders the script for p and evaluates it against the mock
// environment. A redefinition the VM refuses surfaces as the returned
// error; overrides installed before the failing one stay in place.
func (e *Env) Install(p patch.Profile) error {
	script, err := patch.Script(p)
	if err != nil {
		return err
	}
	if _, err := e.vm.RunString(script); err != nil {
		return fmt.Errorf("sandbox: install patch: %w", err)
	}
	e.log.Debug("patch installed", zap.Int("overrides", len(patch.Overrides(p))))
	return nil
}

// Eval runs an arbitrary probe expression in the environment.
func (e *Env) Eval(js string) (goja.Value, error) {
	v, err := e.vm.RunString(js)
	if err != nil {
		return nil, fmt.Errorf("sandbox: eval: %w", err)
	}
	return v, nil
}

// WebdriverUndefined reports whether navigator.webdriver reads back as
// undefined.
func (e *Env) WebdriverUndefined() (bool, error) {
	var out bool
	if err := e.eval("navigator.webdriver === undefined", &out); err != nil {
		return false, err
	}
	return out, nil
}

func (e *Env) Languages() ([]string, error) {
	var out []string
	if err := e.eval("navigator.languages", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Env) HardwareConcurrency() (int, error) {
	var out int
	if err := e.eval("navigator.hardwareConcurrency", &out); err != nil {
		return 0, err
	}
	return out, nil
}

func (e *Env) DeviceMemory() (int, error) {
	var out int
	if err := e.eval("navigator.deviceMemory", &out); err != nil {
		return 0, err
	}
	return out, nil
}

func (e *Env) PluginCount() (int, error) {
	var out int
	if err := e.eval("navigator.plugins.length", &out); err != nil {
		return 0, err
	}
	return out, nil
}

// GetParameter calls getParameter on a fresh WebGL context with the given
// code and returns the result as a string.
func (e *Env) GetParameter(code int) (string, error) {
	var out string
	expr := fmt.Sprintf("(new WebGLRenderingContext()).getParameter(%d)", code)
	if err := e.eval(expr, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (e *Env) eval(js string, out interface{}) error {
	v, err := e.vm.RunString(js)
	if err != nil {
		return fmt.Errorf("sandbox: eval %q: %w", js, err)
	}
	if err := e.vm.ExportTo(v, out); err != nil {
		return fmt.Errorf("sandbox: export %q: %w", js, err)
	}
	return nil
}
