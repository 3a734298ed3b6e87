package notification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"

	"screen-region/src/capture"
)

const title = "Region captured"

// Notifier announces saved captures through the desktop notification
// service of the fyne app.
type Notifier struct {
	app fyne.App
}

func New(app fyne.App) *Notifier { return &Notifier{app: app} }

func (*Notifier) Name() string { return "notification" }

// Consume implements capture.Consumer.
func (n *Notifier) Consume(_ context.Context, h capture.Handle) error {
	if h.Path == "" {
		return errors.New("notification: capture was not saved")
	}
	msg := message(h)
	log.Printf("Notification: %s", msg)
	fyne.Do(func() {
		n.app.SendNotification(fyne.NewNotification(title, msg))
	})
	return nil
}

func message(h capture.Handle) string {
	return fmt.Sprintf("%dx%d saved as %s", h.Bounds.W, h.Bounds.H, filepath.Base(h.Path))
}
