// Package notify surfaces track changes as desktop notifications.
package notify

// Urgency maps onto the freedesktop notification urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification describes a single desktop popup. A zero Timeout keeps
// the popup on screen until dismissed; -1 defers to the server default.
// Setting ReplacesID to a previously returned id updates that popup in
// place instead of stacking a new one.
type Notification struct {
	Title      string
	Body       string
	Icon       string
	Timeout    int32
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier delivers notifications to the desktop environment.
// Implementations degrade to no-ops when no notification daemon is
// reachable, so callers never branch on availability.
type Notifier interface {
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// noopNotifier swallows every notification. Used when the session bus
// is missing and on platforms without a freedesktop daemon.
type noopNotifier struct{}

func (noopNotifier) Notify(Notification) (uint32, error) { return 0, nil }
func (noopNotifier) Close(uint32) error                  { return nil }
