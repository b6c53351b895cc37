package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Notifier sends desktop notifications over the session bus. Each
// notification replaces the previous one so only the latest interval
// completion stays on screen.
type Notifier struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	obj     caller
	logger  *slog.Logger
	appName string
	lastID  uint32
}

// NewNotifier connects to the session bus.
func NewNotifier(appName string, logger *slog.Logger) (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	n := newNotifier(conn.Object(NotificationsInterface, NotificationsPath), appName, logger)
	n.conn = conn
	return n, nil
}

func newNotifier(obj caller, appName string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		obj:     obj,
		logger:  logger,
		appName: appName,
	}
}

// Notify shows a notification and returns the server-assigned id.
func (n *Notifier) Notify(ctx context.Context, summary, body string) (uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	notification := Notification{
		AppName:       n.appName,
		ReplacesID:    n.lastID,
		AppIcon:       "alarm-symbolic",
		Summary:       summary,
		Body:          body,
		Urgency:       UrgencyNormal,
		Category:      "im.received",
		DesktopEntry:  n.appName,
		SoundName:     "complete",
		SuppressSound: true,
		ExpireTimeout: -1,
	}

	var id uint32
	call := n.obj.CallWithContext(ctx, NotificationsInterface+".Notify", 0, notification.Args()...)
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify failed: %w", err)
	}

	n.lastID = id
	n.logger.Debug("desktop notification sent", "id", id, "summary", summary)
	return id, nil
}

// Close closes the bus connection.
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
