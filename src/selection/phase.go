package selection

// Phase is the interaction phase of a selection. The concrete types are
// Idle, Drawing, Confirmed, Moving and Capturing; no other type satisfies it.
type Phase interface {
	String() string
	phase()
}

// Idle means no selection exists.
type Idle struct{}

// Drawing means the user is dragging out a new rectangle.
type Drawing struct{}

// Confirmed means a rectangle of at least MinBoxSize exists and is not being edited.
type Confirmed struct{}

// Moving means the confirmed rectangle is being dragged. Offset is the vector
// from the rectangle's top-left corner to the press point.
type Moving struct {
	Offset Point
}

// Capturing is the one-shot phase during which the overlay paints a single
// transparent frame before the region is captured.
type Capturing struct{}

func (Idle) String() string      { return "Idle" }
func (Drawing) String() string   { return "Drawing" }
func (Confirmed) String() string { return "Confirmed" }
func (Moving) String() string    { return "Moving" }
func (Capturing) String() string { return "Capturing" }

func (Idle) phase()      {}
func (Drawing) phase()   {}
func (Confirmed) phase() {}
func (Moving) phase()    {}
func (Capturing) phase() {}

// Animated reports whether p shows the marching-ants border, which needs a
// new frame after every presented one.
func Animated(p Phase) bool {
	switch p.(type) {
	case Confirmed, Moving:
		return true
	default:
		return false
	}
}
