package singleinstance

const (
	DefaultPortStart = 49600
	DefaultPortEnd   = 49650
)

// PortRange is an inclusive range of loopback ports.
type PortRange struct {
	Start int
	End   int
}

// DefaultPortRange is used when configuration leaves the range unset.
var DefaultPortRange = PortRange{Start: DefaultPortStart, End: DefaultPortEnd}

// normalized clamps the range to [1024, 65535] and orders its ends.
func (r PortRange) normalized() PortRange {
	if r.Start == 0 && r.End == 0 {
		return DefaultPortRange
	}
	if r.Start < 1024 {
		r.Start = 1024
	}
	if r.End > 65535 {
		r.End = 65535
	}
	if r.End < r.Start {
		r.Start, r.End = r.End, r.Start
	}
	return r
}
