package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"tkta/model"
	"tkta/provider/testutil"
)

func postJSON(t *testing.T, s *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestChatStreamsNDJSON(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		if err := callback("Xin chào ", nil); err != nil {
			return err
		}
		return callback("quý khách.", nil)
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/chat", map[string]any{
		"history": []map[string]string{{"role": "user", "content": "trước đó"}, {"role": "model", "content": "vâng"}},
		"message": "Chào bạn",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), lines)
	}
	var first struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 not JSON: %v", err)
	}
	if first.Text != "Xin chào " {
		t.Errorf("first line text = %q", first.Text)
	}
}

func TestChatRunsToolRoundServerSide(t *testing.T) {
	calls := 0
	var secondHistory []model.Message
	mock := testutil.NewMockProvider("test")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		calls++
		if calls == 1 {
			return callback("", []model.ToolCall{{
				ID:   "call-1",
				Name: model.ToolGenerateSrDocs,
				Arguments: map[string]any{
					"issuingCountryCode": "VNM", "passportNumber": "C1234567",
					"nationalityCode": "VNM", "dateOfBirth": "01JAN90",
					"gender": "M", "passportExpiryDate": "20APR28",
					"lastName": "NGUYEN", "firstName": "VAN A",
				},
			}})
		}
		secondHistory = messages
		return callback("Lệnh của bạn đây.", nil)
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/chat", map[string]any{"message": "Tạo SR DOCS giúp tôi"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if calls != 2 {
		t.Fatalf("provider called %d times, want 2", calls)
	}
	if !strings.Contains(rec.Body.String(), "Lệnh của bạn đây.") {
		t.Errorf("final text missing from stream: %s", rec.Body.String())
	}

	toolMsg := secondHistory[len(secondHistory)-1]
	if toolMsg.Role != model.RoleTool || len(toolMsg.ToolResults) != 1 {
		t.Fatalf("tool replay = role %q, %d results", toolMsg.Role, len(toolMsg.ToolResults))
	}
	command, _ := toolMsg.ToolResults[0].Response["command"].(string)
	if command != "SR DOCS YY HK1-P-VNM-C1234567-VNM-01JAN90-M-20APR28-NGUYEN-VAN A" {
		t.Errorf("command = %q", command)
	}
}

func TestChatToolBatchDeliveredPerCall(t *testing.T) {
	// Some backends report each finished tool call in its own callback
	// invocation; the replay must carry every call.
	calls := 0
	var secondHistory []model.Message
	mock := testutil.NewMockProvider("test")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		calls++
		if calls == 1 {
			if err := callback("", []model.ToolCall{{
				ID:   "call-1",
				Name: model.ToolLookupTimatic,
				Arguments: map[string]any{
					"nationality": "Việt Nam", "destination": "Nhật Bản",
				},
			}}); err != nil {
				return err
			}
			return callback("", []model.ToolCall{{
				ID:   "call-2",
				Name: model.ToolLookupTimatic,
				Arguments: map[string]any{
					"nationality": "Việt Nam", "destination": "Hàn Quốc",
				},
			}})
		}
		secondHistory = messages
		return callback("Cả hai kết quả đây.", nil)
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/chat", map[string]any{"message": "Tra cứu hai tuyến giúp tôi"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	modelMsg := secondHistory[len(secondHistory)-2]
	toolMsg := secondHistory[len(secondHistory)-1]
	if len(modelMsg.ToolCalls) != 2 {
		t.Fatalf("replayed %d tool calls, want 2", len(modelMsg.ToolCalls))
	}
	if len(toolMsg.ToolResults) != 2 {
		t.Fatalf("replayed %d tool results, want 2", len(toolMsg.ToolResults))
	}
	if toolMsg.ToolResults[0].ID != "call-1" || toolMsg.ToolResults[1].ID != "call-2" {
		t.Errorf("result ids = (%q, %q), want call order preserved",
			toolMsg.ToolResults[0].ID, toolMsg.ToolResults[1].ID)
	}
}

func TestChatErrorBeforeFirstByte(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.ChatWithToolsFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		return context.DeadlineExceeded
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/chat", map[string]any{"message": "hỏi"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Failed to process chat message." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestTimaticLookupManual(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	var gotPrompt string
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		gotPrompt = prompt
		return "Khách cần visa trước khi khởi hành.", nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/timatic-lookup", map[string]any{
		"nationality":   "Việt Nam",
		"destination":   "Mỹ",
		"transitPoints": "Hàn Quốc, Nhật Bản",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		TimaticResult string `json:"timaticResult"`
	}
	decodeBody(t, rec, &body)
	if body.TimaticResult != "Khách cần visa trước khi khởi hành." {
		t.Errorf("timaticResult = %q", body.TimaticResult)
	}
	if !strings.Contains(gotPrompt, "với các điểm quá cảnh tại 'Hàn Quốc, Nhật Bản'") {
		t.Errorf("transit points missing from prompt: %q", gotPrompt)
	}
}

func TestTimaticLookupManualMissingFields(t *testing.T) {
	s := New(testutil.NewMockProvider("test"))

	rec := postJSON(t, s, "/api/timatic-lookup", map[string]any{"nationality": "Việt Nam"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Nationality and Destination are required for manual lookup." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestTimaticLookupBookingText(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		if strings.Contains(prompt, "Analyze the provided flight booking text") {
			return `{"nationality":"Việt Nam","destination":"Mỹ","transitPoints":["Hàn Quốc"]}`, nil
		}
		return "Cần visa quá cảnh Hàn Quốc.", nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/timatic-lookup", map[string]any{"bookingText": "1.NGUYEN/VAN A ... HAN ICN LAX"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		TimaticResult    string                  `json:"timaticResult"`
		ExtractedDetails extractedTimaticDetails `json:"extractedDetails"`
	}
	decodeBody(t, rec, &body)
	if body.TimaticResult != "Cần visa quá cảnh Hàn Quốc." {
		t.Errorf("timaticResult = %q", body.TimaticResult)
	}
	if body.ExtractedDetails.Nationality != "Việt Nam" || len(body.ExtractedDetails.TransitPoints) != 1 {
		t.Errorf("extractedDetails = %+v", body.ExtractedDetails)
	}
}

func TestTimaticLookupBookingTextIncompleteExtraction(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return `{"nationality":"","destination":"Mỹ","transitPoints":[]}`, nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/timatic-lookup", map[string]any{"bookingText": "nội dung mơ hồ"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Could not automatically determine Nationality or Destination from booking." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestParsePNRToQuote(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		// Models often fence their JSON even when told not to.
		return "```json\n" + `{"itineraryGroups":[{"itineraryDetails":"VN 253 HAN-SGN | 02OCT | 14:00-16:10","priceRows":[{"passengers":"NGUYEN/VAN A","flightClass":"Thương gia"}]}]}` + "\n```", nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/parse-pnr-to-quote", map[string]any{"pnrText": "VN 253 J 02OCT 4 HANSGN HK1 1400 1610"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result quoteResult
	decodeBody(t, rec, &result)
	if len(result.ItineraryGroups) != 1 || len(result.ItineraryGroups[0].PriceRows) != 1 {
		t.Fatalf("unexpected structure: %+v", result)
	}
	if result.ItineraryGroups[0].PriceRows[0].FlightClass != "Thương gia" {
		t.Errorf("flightClass = %q", result.ItineraryGroups[0].PriceRows[0].FlightClass)
	}
}

func TestParsePNRToQuoteRequiresText(t *testing.T) {
	s := New(testutil.NewMockProvider("test"))
	rec := postJSON(t, s, "/api/parse-pnr-to-quote", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestParseGroupFare(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return `[{"quantity":"25","itinerary":"HAN-ICN","date":"11/03/2025","time":"22:50-05:25","flightNumber":"VJ962","agent":"","agentCode":""}]`, nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/parse-group-fare", map[string]any{"content": "25 khách HAN-ICN ngày 11/03"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result []groupFareSegment
	decodeBody(t, rec, &result)
	if len(result) != 1 || result[0].FlightNumber != "VJ962" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestFindNearestAirports(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return `[{"airportName":"Sân bay Quốc tế Nội Bài","iataCode":"HAN","location":"Hà Nội, Việt Nam","distance":"khoảng 25 km"}]`, nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/find-nearest-airports", map[string]any{"location": "Hồ Gươm, Hà Nội"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result []airportResult
	decodeBody(t, rec, &result)
	if len(result) != 1 || result[0].IATACode != "HAN" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestFindNearestAirportsRequiresLocation(t *testing.T) {
	s := New(testutil.NewMockProvider("test"))
	rec := postJSON(t, s, "/api/find-nearest-airports", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGDSEncoder(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	var gotPrompt string
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		gotPrompt = prompt
		return "DNA SGN\nSGN HO CHI MINH CITY", nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/gds-encoder", map[string]any{
		"tool":   "airline_airport_lookup",
		"params": map[string]string{"query": "SGN"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["result"] == "" {
		t.Error("empty result")
	}
	if !strings.Contains(gotPrompt, "'SGN'") {
		t.Errorf("query missing from prompt: %q", gotPrompt)
	}
}

func TestGDSEncoderCurrencyDefaultsDate(t *testing.T) {
	mock := testutil.NewMockProvider("test")
	var gotPrompt string
	mock.CompleteFunc = func(ctx context.Context, system, prompt string) (string, error) {
		gotPrompt = prompt
		return "FQC 100USD/VND", nil
	}
	s := New(mock)

	rec := postJSON(t, s, "/api/gds-encoder", map[string]any{
		"tool":   "currency_conversion",
		"params": map[string]string{"amount": "100", "from": "USD", "to": "VND"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(gotPrompt, "cho ngày hôm nay") {
		t.Errorf("missing default date in prompt: %q", gotPrompt)
	}
}

func TestGDSEncoderInvalidTool(t *testing.T) {
	s := New(testutil.NewMockProvider("test"))

	rec := postJSON(t, s, "/api/gds-encoder", map[string]any{"tool": "fare_hack", "params": map[string]string{}})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Invalid GDS tool specified." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no language", "```\n[1,2]\n```", `[1,2]`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
