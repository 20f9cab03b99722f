package model

import (
	"encoding/json"
	"fmt"
)

// The two tools declared to the model. Names are part of the wire contract
// and must match the declarations in the tools package exactly.
const (
	ToolLookupTimatic  = "lookupTimatic"
	ToolGenerateSrDocs = "generateSrDocs"
)

// ErrUnknownTool is returned when the model requests a tool outside the
// declared set. Such calls are logged and skipped, never executed.
var ErrUnknownTool = fmt.Errorf("unknown tool")

// ToolCall is a model-issued request to invoke a tool mid-turn. ID is the
// provider-assigned correlation identifier; results echo it back.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolResult pairs a tool invocation's output with its originating call.
type ToolResult struct {
	ID       string
	Name     string
	Response map[string]any
	IsError  bool
}

// TimaticArgs are the arguments of a lookupTimatic call.
type TimaticArgs struct {
	Nationality         string   `json:"nationality"`
	Destination         string   `json:"destination"`
	TransitPoints       []string `json:"transitPoints,omitempty"`
	SuggestAlternatives bool     `json:"suggestAlternatives,omitempty"`
}

// SrDocsArgs are the arguments of a generateSrDocs call. All fields are
// pre-normalized by the model (DDMMMYY dates, 3-letter country codes,
// gender M|F); no validation happens downstream.
type SrDocsArgs struct {
	IssuingCountryCode string `json:"issuingCountryCode"`
	PassportNumber     string `json:"passportNumber"`
	NationalityCode    string `json:"nationalityCode"`
	DateOfBirth        string `json:"dateOfBirth"`
	Gender             string `json:"gender"`
	PassportExpiryDate string `json:"passportExpiryDate"`
	LastName           string `json:"lastName"`
	FirstName          string `json:"firstName"`
}

// ToolArgs is the tagged union over the known argument shapes.
type ToolArgs interface {
	toolArgs()
}

func (TimaticArgs) toolArgs() {}
func (SrDocsArgs) toolArgs()  {}

// DecodeArgs converts the raw argument bag into the typed shape for the
// call's tool name. Unknown names yield ErrUnknownTool.
func (c ToolCall) DecodeArgs() (ToolArgs, error) {
	raw, err := json.Marshal(c.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to encode arguments for %s: %w", c.Name, err)
	}

	switch c.Name {
	case ToolLookupTimatic:
		var args TimaticArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("failed to decode %s arguments: %w", c.Name, err)
		}
		return args, nil
	case ToolGenerateSrDocs:
		var args SrDocsArgs
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("failed to decode %s arguments: %w", c.Name, err)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, c.Name)
	}
}
