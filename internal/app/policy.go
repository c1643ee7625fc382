package app

import (
	"errors"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
)

type DeliveryAction int

const (
	SkipRecipient DeliveryAction = iota
	DisconnectRecipient
)

const (
	PolicySkip       = "skip"
	PolicyDisconnect = "disconnect"
)

// Policy decides what happens to a recipient whose outbound queue refused a frame.
type Policy interface {
	OnDeliveryFailure(conn core.ConnID, err error) DeliveryAction
}

// SkipPolicy logs-and-skips: the recipient keeps its connection.
type SkipPolicy struct{}

func (SkipPolicy) OnDeliveryFailure(core.ConnID, error) DeliveryAction { return SkipRecipient }

// DisconnectSlowPolicy closes recipients that cannot keep up with their queue.
// Its teardown then runs like any other disconnect.
type DisconnectSlowPolicy struct{}

func (DisconnectSlowPolicy) OnDeliveryFailure(_ core.ConnID, err error) DeliveryAction {
	if errors.Is(err, core.ErrBackpressure) {
		return DisconnectRecipient
	}
	return SkipRecipient
}

func NewPolicy(name string) (Policy, error) {
	switch name {
	case "", PolicySkip:
		return SkipPolicy{}, nil
	case PolicyDisconnect:
		return DisconnectSlowPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown slow consumer policy %q", name)
	}
}
