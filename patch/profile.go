package patch

import (
	"fmt"
)

// Parameter codes from the WEBGL_debug_renderer_info extension. Browsers
// expose these on the extension object rather than the context prototype, so
// they cannot be read back from the page before a GL context exists; the
// values are fixed by the WebGL registry.
const (
	UnmaskedVendorWebGL   = 37445
	UnmaskedRendererWebGL = 37446
)

// Profile holds the replacement values reported by a patched page context.
type Profile struct {
	// Languages is reported by navigator.languages, in order.
	Languages []string

	// HardwareConcurrency and DeviceMemory are reported as-is. Real Chrome
	// installs report powers of two here, so keep them plausible.
	HardwareConcurrency int
	DeviceMemory        int

	// SpoofWebGL controls whether getParameter is wrapped at all.
	SpoofWebGL    bool
	WebGLVendor   string
	WebGLRenderer string
}

// Default returns the profile of a stock desktop Chrome on Intel graphics.
func Default() Profile {
	return Profile{
		Languages:           []string{"en-US", "en"},
		HardwareConcurrency: 8,
		DeviceMemory:        8,
		SpoofWebGL:          true,
		WebGLVendor:         "Google Inc.",
		WebGLRenderer:       "ANGLE (Intel(R) UHD Graphics Direct3D11 vs_5_0 ps_5_0)",
	}
}

func (p Profile) Validate() error {
	if len(p.Languages) == 0 {
		return fmt.Errorf("profile: languages must include at least one value")
	}
	for _, l := range p.Languages {
		if l == "" {
			return fmt.Errorf("profile: languages must not contain empty entries")
		}
	}
	if p.HardwareConcurrency <= 0 {
		return fmt.Errorf("profile: hardware_concurrency must be positive")
	}
	if p.DeviceMemory <= 0 {
		return fmt.Errorf("profile: device_memory must be positive")
	}
	if p.SpoofWebGL {
		if p.WebGLVendor == "" {
			return fmt.Errorf("profile: webgl_vendor must not be empty")
		}
		if p.WebGLRenderer == "" {
			return fmt.Errorf("profile: webgl_renderer must not be empty")
		}
	}
	return nil
}
