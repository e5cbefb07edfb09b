//go:build !linux

package notify

// New returns a no-op Notifier on platforms without a freedesktop
// notification daemon.
func New() (Notifier, error) {
	return noopNotifier{}, nil
}
