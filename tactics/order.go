package tactics

import (
	"fmt"
	"strings"
)

// Order is the high-level behavior assigned to a managed group.
type Order int

const (
	OrderAttack Order = iota + 1
	OrderDefend
	OrderPatrol
	OrderCompromise
	OrderFollow
)

// String returns the display name used in traces and by mission scripts.
func (o Order) String() string {
	switch o {
	case OrderAttack:
		return "ATTACK"
	case OrderDefend:
		return "DEFEND"
	case OrderPatrol:
		return "PATROL"
	case OrderCompromise:
		return "COMPROMISE"
	case OrderFollow:
		return "FOLLOW"
	default:
		return "UNKNOWN"
	}
}

// ParseOrder accepts the display names case-insensitively.
func ParseOrder(s string) (Order, error) {
	for o := OrderAttack; o <= OrderFollow; o++ {
		if strings.EqualFold(s, o.String()) {
			return o, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedOrder, s)
}
