package patch

import (
	"fmt"
	"strings"
)

// Override describes one patched member, for logs and reports. The actual
// patching happens in the generated script; this table mirrors it.
type Override struct {
	Target  string
	Member  string
	Reports string
}

// Overrides lists every member the script for p touches, in install order.
func Overrides(p Profile) []Override {
	out := []Override{
		{Target: "navigator", Member: "webdriver", Reports: "undefined"},
		{Target: "navigator", Member: "languages", Reports: fmt.Sprintf("[%s]", strings.Join(p.Languages, ", "))},
		{Target: "navigator", Member: "hardwareConcurrency", Reports: fmt.Sprintf("%d", p.HardwareConcurrency)},
		{Target: "navigator", Member: "deviceMemory", Reports: fmt.Sprintf("%d", p.DeviceMemory)},
		{Target: "navigator", Member: "plugins", Reports: "empty PluginArray"},
	}
	if p.SpoofWebGL {
		out = append(out,
			Override{
				Target:  "WebGLRenderingContext.prototype",
				Member:  "getParameter",
				Reports: fmt.Sprintf("%q / %q for unmasked vendor/renderer, delegates otherwise", p.WebGLVendor, p.WebGLRenderer),
			},
		)
	}
	return out
}
