package tray

import "fyne.io/fyne/v2"

// iconSVG is a dashed selection rectangle with a corner handle.
const iconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="2.5" y="2.5" width="11" height="9" fill="none" stroke="#0078d4" stroke-width="1.5" stroke-dasharray="2,1.5"/>
  <rect x="11" y="9.5" width="3.5" height="3.5" fill="#0078d4"/>
  <path d="M5 14.5h6" stroke="#333333" stroke-width="1" stroke-linecap="round"/>
</svg>`

var iconResource = fyne.NewStaticResource("screen-region.svg", []byte(iconSVG))

// Icon returns the tray and window icon.
func Icon() fyne.Resource { return iconResource }
