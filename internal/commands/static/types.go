package staticcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-picogen/internal/generator"
	"github.com/goliatone/go-picogen/internal/protocol"
)

const (
	buildSiteMessageType = "picogen.static.build"
	cleanSiteMessageType = "picogen.static.clean"
)

// ResultCallback receives build results produced by generator operations. The callback is optional
// and is invoked synchronously from the handler when a BuildResult is available.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope captures the outcome of a static command execution that generated a BuildResult.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand generates the site for each named protocol, in order.
type BuildSiteCommand struct {
	Protocols      []string       `json:"protocols"`
	DryRun         bool           `json:"dry_run,omitempty"`
	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate requires at least one protocol and rejects unknown names.
func (m BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Protocols,
			validation.Required.ErrorObject(validation.NewError("picogen.static.build.protocols_required", "at least one protocol is required")),
			validation.Each(validation.By(validProtocol)),
		),
	)
}

// Targets returns the parsed protocols with duplicates removed.
func (m BuildSiteCommand) Targets() ([]protocol.Protocol, error) {
	return protocol.ParseList(m.Protocols)
}

// CleanSiteCommand removes target/<suffix> for each named protocol.
type CleanSiteCommand struct {
	Protocols []string `json:"protocols"`
}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate requires known protocol names.
func (m CleanSiteCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Protocols,
			validation.Required,
			validation.Each(validation.By(validProtocol)),
		),
	)
}

func validProtocol(value any) error {
	name, _ := value.(string)
	if _, err := protocol.Parse(strings.TrimSpace(name)); err != nil {
		return validation.NewError("picogen.static.protocol_invalid", "unknown protocol "+name+" (use http or gemini)")
	}
	return nil
}
