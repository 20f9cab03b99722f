package orchestrator

import (
	"fmt"
	"strings"

	"tkta/model"
)

// thinkingLabel describes one tool call in Vietnamese while it executes.
// TIMATIC lookups name the nationality, destination and any transit points;
// anything else gets a generic label.
func thinkingLabel(call model.ToolCall) string {
	args, err := call.DecodeArgs()
	if err != nil {
		return "*Đang xử lý công cụ...*"
	}
	switch a := args.(type) {
	case model.TimaticArgs:
		if len(a.TransitPoints) > 0 {
			return fmt.Sprintf("*Đang tra cứu TIMATIC cho khách quốc tịch %s đi %s quá cảnh tại %s...*",
				a.Nationality, a.Destination, strings.Join(a.TransitPoints, ", "))
		}
		return fmt.Sprintf("*Đang tra cứu TIMATIC cho khách quốc tịch %s đi %s...*",
			a.Nationality, a.Destination)
	case model.SrDocsArgs:
		return "*Đang tạo lệnh SR DOCS...*"
	default:
		return "*Đang xử lý công cụ...*"
	}
}

// thinkingContent joins one label per call, shown in place of the answer
// until the tool round finishes.
func thinkingContent(calls []model.ToolCall) string {
	labels := make([]string, 0, len(calls))
	for _, call := range calls {
		labels = append(labels, thinkingLabel(call))
	}
	return strings.Join(labels, "\n")
}
