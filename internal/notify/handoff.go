package notify

import (
	"context"

	"github.com/angelmondragon/vitrine-backend/internal/handoff"
)

// Handoff notifies by launching the event's WhatsApp plan.
type Handoff struct {
	launcher *handoff.Launcher
}

func NewHandoff(launcher *handoff.Launcher) *Handoff {
	return &Handoff{launcher: launcher}
}

func (h *Handoff) NotifyOrder(ctx context.Context, event Event) error {
	return h.launcher.Launch(ctx, event.Handoff)
}
