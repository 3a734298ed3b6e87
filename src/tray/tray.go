package tray

import (
	"log"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const idleStatus = "Ready"

// Tray is the system tray menu of the resident process.
type Tray struct {
	mu     sync.Mutex
	menu   *fyne.Menu
	status *fyne.MenuItem
}

// Setup installs the tray menu. On drivers without a system tray the menu is
// built but never shown, and SetStatus only logs.
func Setup(app fyne.App, onSelect func()) *Tray {
	t := &Tray{status: fyne.NewMenuItem(idleStatus, nil)}
	t.status.Disabled = true

	selectItem := fyne.NewMenuItem("Select region", func() {
		if onSelect != nil {
			onSelect()
		}
	})
	t.menu = fyne.NewMenu("screen-region", selectItem, fyne.NewMenuItemSeparator(), t.status)

	if desk, ok := app.(desktop.App); ok {
		desk.SetSystemTrayMenu(t.menu)
		desk.SetSystemTrayIcon(Icon())
	} else {
		log.Printf("Tray: system tray not supported by this driver")
	}
	return t
}

// SetStatus updates the status line. Safe from any goroutine.
func (t *Tray) SetStatus(text string) {
	if text == "" {
		text = idleStatus
	}
	log.Printf("Tray: status %q", text)
	fyne.Do(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.status.Label = text
		t.menu.Refresh()
	})
}
