package plugin

import "errors"

// Error kinds per spec §7. InvalidPlugin covers malformed modules,
// unsupported versions, missing/duplicate sections, and unknown
// imports; LinkerError covers instantiation failures; PluginRuntime
// covers traps, refused memory growth, and OOM during a call.
var (
	ErrInvalidPlugin = errors.New("plugin: invalid plugin")
	ErrLinkerError   = errors.New("plugin: linker error")
	ErrPluginRuntime = errors.New("plugin: runtime error")
)
