package tools

import (
	"context"
	"errors"
	"fmt"

	"tkta/config"
	"tkta/model"
)

// Executor runs tool calls issued by the model during a chat turn.
//
// The TIMATIC lookup needs a model backend of its own: the "database" is a
// second completion acting as TIMATIC. Injecting the provider keeps the
// executor testable and lets deployments point the lookup at a cheaper
// model than the chat stream.
type Executor struct {
	timatic model.Provider
}

// NewExecutor creates an executor whose TIMATIC lookups run through the
// given provider.
func NewExecutor(timaticProvider model.Provider) *Executor {
	return &Executor{timatic: timaticProvider}
}

// ExecuteBatch runs a batch of tool calls sequentially, in the order the
// model issued them. Every call gets a result carrying the originating
// call's ID and name so the pairing survives the replay; failures, unknown
// tool names included, come back as error results.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []model.ToolCall) []model.ToolResult {
	results := make([]model.ToolResult, 0, len(calls))
	for _, call := range calls {
		result, err := e.Execute(ctx, call)
		if err != nil {
			if errors.Is(err, model.ErrUnknownTool) && config.Debug {
				config.DebugLog.Printf("[Tools] Unknown tool call %q (id %s)", call.Name, call.ID)
			}
			results = append(results, model.ToolResult{
				ID:       call.ID,
				Name:     call.Name,
				Response: map[string]any{"error": err.Error()},
				IsError:  true,
			})
			continue
		}
		results = append(results, result)
	}
	return results
}

// Execute runs a single tool call. Unknown tool names return
// model.ErrUnknownTool; argument decode failures are reported as errors so
// the model can see what went wrong.
func (e *Executor) Execute(ctx context.Context, call model.ToolCall) (model.ToolResult, error) {
	args, err := call.DecodeArgs()
	if err != nil {
		return model.ToolResult{}, err
	}

	switch a := args.(type) {
	case model.TimaticArgs:
		return model.ToolResult{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{"result": e.LookupTimatic(ctx, a)},
		}, nil

	case model.SrDocsArgs:
		return model.ToolResult{
			ID:       call.ID,
			Name:     call.Name,
			Response: map[string]any{"command": GenerateSrDocs(a)},
		}, nil

	default:
		return model.ToolResult{}, fmt.Errorf("%w: %s", model.ErrUnknownTool, call.Name)
	}
}

// LookupTimatic asks the secondary model, acting as the TIMATIC database,
// for visa, health and transit requirements. Failures degrade to a fixed
// Vietnamese apology so the chat turn can still complete.
func (e *Executor) LookupTimatic(ctx context.Context, args model.TimaticArgs) string {
	prompt := BuildTimaticPrompt(args.Nationality, args.Destination, args.TransitPoints, args.SuggestAlternatives)

	result, err := e.timatic.Complete(ctx, "", prompt)
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Tools] TIMATIC lookup failed: %v", err)
		}
		return TimaticUnavailable
	}
	return result
}

// GenerateSrDocs formats the Amadeus SR DOCS entry from passport details.
// The fields arrive pre-normalized (DDMMMYY dates, 3-letter country codes,
// M/F gender); no validation happens here.
func GenerateSrDocs(args model.SrDocsArgs) string {
	return fmt.Sprintf("SR DOCS YY HK1-P-%s-%s-%s-%s-%s-%s-%s-%s",
		args.IssuingCountryCode,
		args.PassportNumber,
		args.NationalityCode,
		args.DateOfBirth,
		args.Gender,
		args.PassportExpiryDate,
		args.LastName,
		args.FirstName,
	)
}
