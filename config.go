package picogen

import (
	"github.com/goliatone/go-picogen/internal/protocol"
	"github.com/goliatone/go-picogen/internal/runtimeconfig"
)

var (
	ErrConfigNotFound         = runtimeconfig.ErrConfigNotFound
	ErrConfigFormat           = runtimeconfig.ErrConfigFormat
	ErrConfigInvalid          = runtimeconfig.ErrConfigInvalid
	ErrDuplicateTaxonomy      = runtimeconfig.ErrDuplicateTaxonomy
	ErrInlinedIndexUnknown    = runtimeconfig.ErrInlinedIndexUnknown
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
	ErrUnknownProtocol        = protocol.ErrUnknownProtocol
)

type (
	Config              = runtimeconfig.Config
	LoggingConfig       = runtimeconfig.LoggingConfig
	Taxonomy            = runtimeconfig.Taxonomy
	IndexDefinition     = runtimeconfig.IndexDefinition
	ValueListDefinition = runtimeconfig.ValueListDefinition
	Limit               = runtimeconfig.Limit
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a JSON or YAML site configuration.
func LoadConfig(path string) (*Config, error) {
	return runtimeconfig.Load(path)
}

// ParseProtocols resolves format names such as "http" and "gemini".
func ParseProtocols(names ...string) ([]Protocol, error) {
	return protocol.ParseList(names)
}
