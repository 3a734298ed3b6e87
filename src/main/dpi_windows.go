//go:build windows

package main

import (
	"log"

	"golang.org/x/sys/windows"
)

const processPerMonitorDPIAware = 2

// enableDPIAwareness makes the overlay and the screenshots agree on
// physical pixels on scaled displays.
func enableDPIAwareness() {
	shcore := windows.NewLazySystemDLL("Shcore.dll")
	setAwareness := shcore.NewProc("SetProcessDpiAwareness")
	if err := setAwareness.Find(); err == nil {
		ret, _, _ := setAwareness.Call(uintptr(processPerMonitorDPIAware))
		if ret == 0 {
			log.Printf("DPI: per-monitor awareness set")
		} else {
			log.Printf("DPI: SetProcessDpiAwareness failed: 0x%x", ret)
		}
		return
	}

	user32 := windows.NewLazySystemDLL("user32.dll")
	setAware := user32.NewProc("SetProcessDPIAware")
	if err := setAware.Find(); err != nil {
		log.Printf("DPI: no awareness API available")
		return
	}
	if ret, _, _ := setAware.Call(); ret == 0 {
		log.Printf("DPI: SetProcessDPIAware failed")
	}
}

// GetSystemMetrics indices.
const (
	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
	smCMonitors       = 80
)

func logMonitorConfiguration() {
	metrics := windows.NewLazySystemDLL("user32.dll").NewProc("GetSystemMetrics")
	get := func(i uintptr) int32 {
		r, _, _ := metrics.Call(i)
		return int32(r)
	}
	log.Printf("MONITOR: %d monitors, virtual screen x:%d y:%d w:%d h:%d",
		get(smCMonitors), get(smXVirtualScreen), get(smYVirtualScreen),
		get(smCXVirtualScreen), get(smCYVirtualScreen))
}
