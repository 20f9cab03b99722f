// Package tools declares the assistant's callable tools and executes them.
//
// Two tools are exposed to the model: lookupTimatic, which answers visa,
// health and transit questions by delegating to a secondary model completion
// acting as the TIMATIC database, and generateSrDocs, which formats the
// Amadeus SR DOCS entry from passport details. The model decides when to
// call them; the Executor runs the calls and hands the results back so the
// model can compose its final answer.
package tools

import (
	_ "embed"
	"fmt"
	"strings"
)

// SystemInstruction is the assistant persona: GDS expertise, Vietnamese
// airline fare tables, the BSP commission reference, tool usage rules, and
// booking-analysis templates. Every chat turn carries it.
//
//go:embed system_instruction.md
var SystemInstruction string

// BuildTimaticPrompt renders the prompt sent to the secondary model acting
// as the TIMATIC database. The response is expected in Vietnamese.
func BuildTimaticPrompt(nationality, destination string, transitPoints []string, suggestAlternatives bool) string {
	transitInfo := ""
	if len(transitPoints) > 0 {
		transitInfo = fmt.Sprintf(" với các điểm quá cảnh tại '%s'", strings.Join(transitPoints, ", "))
	}

	prompt := fmt.Sprintf(`Với vai trò là hệ thống TIMATIC, hãy cung cấp thông tin chi tiết và chính xác về yêu cầu visa, sức khỏe và quá cảnh cho hành khách có quốc tịch '%s' đi đến '%s'%s.

Phân tích kỹ lưỡng các quy định cho từng chặng (nếu có quá cảnh). Trả lời bằng dữ liệu thực tế, định dạng rõ ràng. Phản hồi phải bằng tiếng Việt.`, nationality, destination, transitInfo)

	if suggestAlternatives {
		prompt += "\n\nQUAN TRỌNG: Nếu tuyến đường được yêu cầu (với các điểm quá cảnh đã nêu) gặp vấn đề về visa (ví dụ: yêu cầu visa quá cảnh khó xin), hãy đề xuất 1-2 tuyến đường thay thế khả thi không yêu cầu visa hoặc có chính sách visa khi đến (visa on arrival) cho quốc tịch này."
	}

	return prompt
}

// TimaticUnavailable is returned to the model when the TIMATIC completion
// fails, so the conversation can still finish gracefully.
const TimaticUnavailable = "Xin lỗi, không thể tra cứu thông tin TIMATIC vào lúc này."
