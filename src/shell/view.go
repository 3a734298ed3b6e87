package shell

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"screen-region/src/input"
	"screen-region/src/selection"
)

// view is the fullscreen overlay widget. It converts fyne pointer events,
// which arrive in device independent units, into physical pixel events.
type view struct {
	widget.BaseWidget
	raster   *canvas.Raster
	scale    func() float32
	dispatch func(input.Event) bool
}

var (
	_ desktop.Mouseable  = (*view)(nil)
	_ desktop.Hoverable  = (*view)(nil)
	_ desktop.Cursorable = (*view)(nil)
	_ fyne.Draggable     = (*view)(nil)
)

func newView(raster *canvas.Raster, scale func() float32, dispatch func(input.Event) bool) *view {
	v := &view{raster: raster, scale: scale, dispatch: dispatch}
	v.ExtendBaseWidget(v)
	return v
}

func (v *view) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

func (v *view) moved(p fyne.Position) {
	s := v.scale()
	v.dispatch(input.PointerMoved{X: float64(p.X * s), Y: float64(p.Y * s)})
}

func (v *view) MouseIn(ev *desktop.MouseEvent)    { v.moved(ev.Position) }
func (v *view) MouseMoved(ev *desktop.MouseEvent) { v.moved(ev.Position) }
func (v *view) MouseOut()                         {}

func (v *view) MouseDown(ev *desktop.MouseEvent) {
	v.moved(ev.Position)
	v.dispatch(input.PointerButton{Button: buttonOf(ev.Button), Pressed: true})
}

func (v *view) MouseUp(ev *desktop.MouseEvent) {
	v.moved(ev.Position)
	v.dispatch(input.PointerButton{Button: buttonOf(ev.Button), Pressed: false})
}

// Dragged keeps the cursor flowing while a button is held; some drivers stop
// sending hover events during a drag.
func (v *view) Dragged(ev *fyne.DragEvent) { v.moved(ev.Position) }
func (v *view) DragEnd()                   {}

func (v *view) Cursor() desktop.Cursor { return desktop.CrosshairCursor }

func buttonOf(b desktop.MouseButton) selection.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return selection.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return selection.ButtonTertiary
	default:
		return selection.ButtonPrimary
	}
}
