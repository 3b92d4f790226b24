package commands

import (
	"strings"

	"github.com/goliatone/go-picogen/internal/logging"
	"github.com/goliatone/go-picogen/pkg/interfaces"
)

// CommandLogger names a logger after the command family ("static", "core").
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = "core"
	}
	return logging.WithFields(
		logging.For(provider, logging.Root.Child("commands").Child(family)),
		map[string]any{"command_family": family},
	)
}
