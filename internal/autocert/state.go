package autocert

type OrderState int

const (
	OrderStateNone OrderState = iota
	OrderStatePending
	OrderStateProcessing
	OrderStateValid
	OrderStateFailed
)

func (s OrderState) String() string {
	switch s {
	case OrderStatePending:
		return "pending"
	case OrderStateProcessing:
		return "processing"
	case OrderStateValid:
		return "valid"
	case OrderStateFailed:
		return "failed"
	default:
		return "none"
	}
}

// order is owned by one domain worker and only observed through events.
type order struct {
	domain  string
	state   OrderState
	attempt int
	err     error
}
