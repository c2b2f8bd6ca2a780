package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes session events to an slog.Logger.
// Useful for development when you want to see device traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.Serial != "" {
		attrs = append(attrs, slog.String("serial", event.Serial))
	}

	switch {
	case event.Command != nil:
		attrs = append(attrs,
			slog.String("opcode", event.Command.Mnemonic),
			slog.Int("response_len", event.Command.ResponseLen),
		)
		if event.Command.Failed {
			attrs = append(attrs, slog.Bool("failed", true))
		}
	case event.Capability != nil:
		attrs = append(attrs,
			slog.String("firmware", event.Capability.FirmwareVersion),
			slog.String("capabilities", event.Capability.MaskText),
		)
	case event.Control != nil:
		attrs = append(attrs,
			slog.String("control", event.Control.Name),
			slog.String("kind", event.Control.Kind),
		)
	case event.Policy != nil:
		attrs = append(attrs,
			slog.String("control", event.Policy.Control),
			slog.String("reason", event.Policy.Reason),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "device", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
