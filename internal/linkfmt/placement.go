package linkfmt

// Placement selects the paragraph position a link block is inserted at.
type Placement int

const (
	PlacementTop Placement = iota
	PlacementAfter1
	PlacementAfter2
	PlacementMid
	PlacementBeforeLast
	PlacementBottom
)

// Placements lists every strategy in rotation order.
var Placements = []Placement{
	PlacementTop,
	PlacementAfter1,
	PlacementAfter2,
	PlacementMid,
	PlacementBeforeLast,
	PlacementBottom,
}

func (p Placement) String() string {
	switch p {
	case PlacementTop:
		return "TOP"
	case PlacementAfter1:
		return "AFTER_1"
	case PlacementAfter2:
		return "AFTER_2"
	case PlacementMid:
		return "MID"
	case PlacementBeforeLast:
		return "BEFORE_LAST"
	case PlacementBottom:
		return "BOTTOM"
	default:
		return "UNKNOWN"
	}
}

// PlacementFor returns the strategy for a rotation counter.
func PlacementFor(counter int) Placement {
	return Placements[mod(counter, len(Placements))]
}

// Index maps the strategy onto a text of n paragraphs. The result is always in [0, n].
func (p Placement) Index(n int) int {
	if n <= 0 {
		return 0
	}
	var idx int
	switch p {
	case PlacementTop:
		idx = 0
	case PlacementAfter1:
		idx = 1
	case PlacementAfter2:
		idx = 2
	case PlacementMid:
		idx = n / 2
	case PlacementBeforeLast:
		idx = n - 1
	default:
		idx = n
	}
	return max(0, min(idx, n))
}
