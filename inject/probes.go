package inject

import (
	"encoding/json"
	"fmt"

	"browser-env-patch/patch"
)

// Probe is one read-back check: a JS expression evaluated in the patched
// context and the JSON it must produce.
type Probe struct {
	Name string
	Expr string
	Want string
}

// Probes returns the read-back checks for a profile, one per patched
// member. The WebGL probes call the patched getParameter through the
// prototype with a nil receiver; the intercepted codes never touch `this`,
// so no GL context is needed.
func Probes(p patch.Profile) []Probe {
	langs, _ := json.Marshal(p.Languages)
	out := []Probe{
		{Name: "navigator.webdriver", Expr: "navigator.webdriver === undefined", Want: "true"},
		{Name: "navigator.languages", Expr: "navigator.languages", Want: string(langs)},
		{Name: "navigator.hardwareConcurrency", Expr: "navigator.hardwareConcurrency", Want: fmt.Sprintf("%d", p.HardwareConcurrency)},
		{Name: "navigator.deviceMemory", Expr: "navigator.deviceMemory", Want: fmt.Sprintf("%d", p.DeviceMemory)},
		{Name: "navigator.plugins.length", Expr: "navigator.plugins.length", Want: "0"},
	}
	if p.SpoofWebGL {
		vendor, _ := json.Marshal(p.WebGLVendor)
		renderer, _ := json.Marshal(p.WebGLRenderer)
		out = append(out,
			Probe{
				Name: "webgl.vendor",
				Expr: fmt.Sprintf("WebGLRenderingContext.prototype.getParameter.call(null, %d)", patch.UnmaskedVendorWebGL),
				Want: string(vendor),
			},
			Probe{
				Name: "webgl.renderer",
				Expr: fmt.Sprintf("WebGLRenderingContext.prototype.getParameter.call(null, %d)", patch.UnmaskedRendererWebGL),
				Want: string(renderer),
			},
		)
	}
	return out
}
