package sandbox

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-env-patch/patch"
)

func newInstalled(t *testing.T, p patch.Profile) *Env {
	t.Helper()
	env, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, env.Install(p))
	return env
}

func TestBaselineLooksAutomated(t *testing.T) {
	env, err := New(nil)
	require.NoError(t, err)

	hidden, err := env.WebdriverUndefined()
	require.NoError(t, err)
	assert.False(t, hidden, "baseline must expose navigator.webdriver")

	langs, err := env.Languages()
	require.NoError(t, err)
	assert.Empty(t, langs)

	plugins, err := env.PluginCount()
	require.NoError(t, err)
	assert.Equal(t, 1, plugins)
}

func TestInstallDefaultProfile(t *testing.T) {
	env := newInstalled(t, patch.Default())

	hidden, err := env.WebdriverUndefined()
	require.NoError(t, err)
	assert.True(t, hidden)

	langs, err := env.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"en-US", "en"}, langs)

	hc, err := env.HardwareConcurrency()
	require.NoError(t, err)
	assert.Equal(t, 8, hc)

	dm, err := env.DeviceMemory()
	require.NoError(t, err)
	assert.Equal(t, 8, dm)

	plugins, err := env.PluginCount()
	require.NoError(t, err)
	assert.Equal(t, 0, plugins)

	vendor, err := env.GetParameter(patch.UnmaskedVendorWebGL)
	require.NoError(t, err)
	assert.Equal(t, "Google Inc.", vendor)

	renderer, err := env.GetParameter(patch.UnmaskedRendererWebGL)
	require.NoError(t, err)
	assert.Equal(t, "ANGLE (Intel(R) UHD Graphics Direct3D11 vs_5_0 ps_5_0)", renderer)
}

func TestRepeatedReadsAreStable(t *testing.T) {
	env := newInstalled(t, patch.Default())

	for i := 0; i < 5; i++ {
		hidden, err := env.WebdriverUndefined()
		require.NoError(t, err)
		assert.True(t, hidden)

		langs, err := env.Languages()
		require.NoError(t, err)
		assert.Equal(t, []string{"en-US", "en"}, langs)
	}
}

func TestGetParameterDelegatesUnknownCodes(t *testing.T) {
	env := newInstalled(t, patch.Default())

	// Any code outside the intercepted pair must hit the original method
	// with the caller's receiver and come back unchanged.
	for _, code := range []int{0, 3379, 7936, 37444, 37447} {
		got, err := env.GetParameter(code)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("mock-webgl:%d", code), got)
	}
}

func TestWebGL2PrototypePatched(t *testing.T) {
	env := newInstalled(t, patch.Default())

	v, err := env.Eval(fmt.Sprintf("(new WebGL2RenderingContext()).getParameter(%d)", patch.UnmaskedVendorWebGL))
	require.NoError(t, err)
	assert.Equal(t, "Google Inc.", v.Export())

	v, err = env.Eval("(new WebGL2RenderingContext()).getParameter(3379)")
	require.NoError(t, err)
	assert.Equal(t, "mock-webgl2:3379", v.Export())
}

func TestDoubleInstallDoesNotDrift(t *testing.T) {
	env := newInstalled(t, patch.Default())
	require.NoError(t, env.Install(patch.Default()))

	hidden, err := env.WebdriverUndefined()
	require.NoError(t, err)
	assert.True(t, hidden)

	vendor, err := env.GetParameter(patch.UnmaskedVendorWebGL)
	require.NoError(t, err)
	assert.Equal(t, "Google Inc.", vendor)

	// The wrapper marks itself; a second install must not capture the
	// first wrapper as the original and stack delegation.
	got, err := env.GetParameter(3379)
	require.NoError(t, err)
	assert.Equal(t, "mock-webgl:3379", got)
}

func TestCustomProfile(t *testing.T) {
	p := patch.Profile{
		Languages:           []string{"de-DE", "de", "en"},
		HardwareConcurrency: 16,
		DeviceMemory:        4,
		SpoofWebGL:          true,
		WebGLVendor:         "Vendor GmbH",
		WebGLRenderer:       "Renderer 3000",
	}
	env := newInstalled(t, p)

	langs, err := env.Languages()
	require.NoError(t, err)
	assert.Equal(t, []string{"de-DE", "de", "en"}, langs)

	hc, err := env.HardwareConcurrency()
	require.NoError(t, err)
	assert.Equal(t, 16, hc)

	vendor, err := env.GetParameter(patch.UnmaskedVendorWebGL)
	require.NoError(t, err)
	assert.Equal(t, "Vendor GmbH", vendor)
}

func TestWebGLOffLeavesGetParameterAlone(t *testing.T) {
	p := patch.Default()
	p.SpoofWebGL = false
	env := newInstalled(t, p)

	got, err := env.GetParameter(patch.UnmaskedVendorWebGL)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("mock-webgl:%d", patch.UnmaskedVendorWebGL), got)
}

func TestPluginsShapeLikePluginArray(t *testing.T) {
	env := newInstalled(t, patch.Default())

	v, err := env.Eval("typeof navigator.plugins.item === 'function' && typeof navigator.plugins.namedItem === 'function' && typeof navigator.plugins.refresh === 'function'")
	require.NoError(t, err)
	assert.Equal(t, true, v.Export())

	v, err = env.Eval("navigator.plugins.item(0)")
	require.NoError(t, err)
	assert.True(t, v == nil || v.Export() == nil)
}

func TestRefusedRedefinitionPropagates(t *testing.T) {
	env, err := New(nil)
	require.NoError(t, err)

	// Lock a member mid-table. Install must fail there, keep the earlier
	// overrides, and leave the later ones untouched. No rollback.
	_, err = env.Eval("Object.defineProperty(navigator, 'hardwareConcurrency', { value: 2, configurable: false })")
	require.NoError(t, err)

	err = env.Install(patch.Default())
	require.Error(t, err)

	hidden, werr := env.WebdriverUndefined()
	require.NoError(t, werr)
	assert.True(t, hidden, "webdriver override precedes the failure and must persist")

	langs, lerr := env.Languages()
	require.NoError(t, lerr)
	assert.Equal(t, []string{"en-US", "en"}, langs)

	dm, derr := env.DeviceMemory()
	require.NoError(t, derr)
	assert.Equal(t, 2, dm, "deviceMemory follows the failure and must stay baseline")

	got, gerr := env.GetParameter(patch.UnmaskedVendorWebGL)
	require.NoError(t, gerr)
	assert.Equal(t, fmt.Sprintf("mock-webgl:%d", patch.UnmaskedVendorWebGL), got)
}
