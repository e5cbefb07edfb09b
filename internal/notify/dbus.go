//go:build linux

package notify

import "github.com/godbus/dbus/v5"

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	closeMethod  = "org.freedesktop.Notifications.CloseNotification"
)

// busNotifier talks to the freedesktop notification daemon over the
// session bus.
type busNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. When the bus cannot be reached the
// returned Notifier is a no-op rather than an error: a headless session
// should not keep playdeck from starting.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return noopNotifier{}, nil
	}
	return &busNotifier{obj: conn.Object(notifyDest, notifyPath)}, nil
}

func (b *busNotifier) Notify(n Notification) (uint32, error) {
	call := b.obj.Call(notifyMethod, 0, callArgs(n)...)
	if call.Err != nil {
		return 0, call.Err
	}
	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (b *busNotifier) Close(id uint32) error {
	return b.obj.Call(closeMethod, 0, id).Err
}

// callArgs lays out the Notify method arguments in wire order:
// app_name, replaces_id, app_icon, summary, body, actions, hints,
// expire_timeout.
func callArgs(n Notification) []interface{} {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant("playdeck"),
	}
	return []interface{}{
		"Playdeck",
		n.ReplacesID,
		n.Icon,
		n.Title,
		n.Body,
		[]string{},
		hints,
		n.Timeout,
	}
}
