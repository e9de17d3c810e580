package patch

import (
	"encoding/json"
	"fmt"
)

// scriptProfile is the wire shape spliced into the generated script.
type scriptProfile struct {
	Languages           []string `json:"languages"`
	HardwareConcurrency int      `json:"hardwareConcurrency"`
	DeviceMemory        int      `json:"deviceMemory"`
	SpoofWebGL          bool     `json:"spoofWebGL"`
	WebGLVendor         string   `json:"webglVendor"`
	WebGLRenderer       string   `json:"webglRenderer"`
}

// Script renders the patch as a self-executing JS snippet. It must run
// before any page script, once per page context.
//
// The generated code deliberately avoids try/catch around the
// redefinitions: if the host refuses one (non-configurable property), the
// failure propagates to the injector and the remaining redefinitions are
// skipped. Earlier ones stay in place.
func Script(p Profile) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("build script: %w", err)
	}
	data, err := json.Marshal(scriptProfile{
		Languages:           p.Languages,
		HardwareConcurrency: p.HardwareConcurrency,
		DeviceMemory:        p.DeviceMemory,
		SpoofWebGL:          p.SpoofWebGL,
		WebGLVendor:         p.WebGLVendor,
		WebGLRenderer:       p.WebGLRenderer,
	})
	if err != nil {
		return "", fmt.Errorf("build script: marshal profile: %w", err)
	}
	return fmt.Sprintf(scriptTemplate, data, UnmaskedVendorWebGL, UnmaskedRendererWebGL), nil
}

// The getters use configurable: true so re-running the script in the same
// context lands on identical observable values. The getParameter wrapper
// marks itself and skips already-patched prototypes, otherwise a second run
// would capture the wrapper as "original" and stack.
const scriptTemplate = `(() => {
	'use strict';

	const profile = %s;
	const UNMASKED_VENDOR_WEBGL = %d;
	const UNMASKED_RENDERER_WEBGL = %d;

	const defineValueGetter = (target, member, value) => {
		Object.defineProperty(target, member, {
			get: () => value,
			configurable: true,
		});
	};

	defineValueGetter(navigator, 'webdriver', undefined);
	defineValueGetter(navigator, 'languages', Object.freeze(profile.languages.slice()));
	defineValueGetter(navigator, 'hardwareConcurrency', profile.hardwareConcurrency);
	defineValueGetter(navigator, 'deviceMemory', profile.deviceMemory);

	const plugins = [];
	plugins.item = () => null;
	plugins.namedItem = () => null;
	plugins.refresh = () => {};
	defineValueGetter(navigator, 'plugins', plugins);

	if (profile.spoofWebGL) {
		const wrapGetParameter = (proto) => {
			const original = proto.getParameter;
			if (original.__envPatchWrapped) {
				return;
			}
			const patched = function (parameter) {
				if (parameter === UNMASKED_VENDOR_WEBGL) {
					return profile.webglVendor;
				}
				if (parameter === UNMASKED_RENDERER_WEBGL) {
					return profile.webglRenderer;
				}
				return original.apply(this, arguments);
			};
			patched.__envPatchWrapped = true;
			proto.getParameter = patched;
		};
		wrapGetParameter(WebGLRenderingContext.prototype);
		if (typeof WebGL2RenderingContext !== 'undefined') {
			wrapGetParameter(WebGL2RenderingContext.prototype);
		}
	}
})();`
