package hotkey

import (
	"fmt"
	"log"
	"strings"

	gohook "github.com/robotn/gohook"
)

var modifierNames = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"alt":     "alt",
	"option":  "alt",
	"shift":   "shift",
	"win":     "cmd",
	"cmd":     "cmd",
	"super":   "cmd",
	"meta":    "cmd",
}

// Listen registers a global hotkey such as "Ctrl+Shift+R" and starts the
// hook event loop. callback runs on the hook goroutine. The returned stop
// function ends the hook.
func Listen(hotkeyConfig string, callback func()) (stop func(), err error) {
	keys, err := parseHotkey(hotkeyConfig)
	if err != nil {
		return nil, err
	}
	log.Printf("Hotkey: registering %s as %v", hotkeyConfig, keys)

	gohook.Register(gohook.KeyDown, keys, func(gohook.Event) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey callback: %v", r)
			}
		}()
		log.Printf("Hotkey: %s activated", hotkeyConfig)
		if callback != nil {
			callback()
		}
	})

	evChan := gohook.Start()
	if evChan == nil {
		return nil, fmt.Errorf("hotkey: gohook.Start returned no event channel")
	}
	go func() {
		<-gohook.Process(evChan)
		log.Printf("Hotkey: event loop ended")
	}()
	return gohook.End, nil
}

// parseHotkey turns "Ctrl+Shift+R" into gohook's key list, which names the
// main key first and the modifiers after it: ["r", "ctrl", "shift"].
func parseHotkey(hotkeyConfig string) ([]string, error) {
	var key string
	var mods []string
	seen := map[string]bool{}

	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m, ok := modifierNames[part]; ok {
			if !seen[m] {
				seen[m] = true
				mods = append(mods, m)
			}
			continue
		}
		if key != "" {
			return nil, fmt.Errorf("hotkey %q names more than one key", hotkeyConfig)
		}
		if _, ok := gohook.Keycode[part]; !ok {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", hotkeyConfig, part)
		}
		key = part
	}
	if key == "" {
		return nil, fmt.Errorf("hotkey %q has no key", hotkeyConfig)
	}
	return append([]string{key}, mods...), nil
}
