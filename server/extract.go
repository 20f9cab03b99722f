package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// jsonOnlySystem steers providers without a structured-output mode into
// returning bare JSON the handlers can parse.
const jsonOnlySystem = "You are a structured data extraction engine. Respond with a single valid JSON document only. No markdown fences, no commentary."

// completeJSON runs a non-streaming completion and decodes its output into
// target, tolerating a fenced code block around the JSON.
func (s *Server) completeJSON(ctx context.Context, prompt string, target any) error {
	text, err := s.provider.Complete(ctx, jsonOnlySystem, prompt)
	if err != nil {
		return err
	}
	raw := extractJSON(text)
	if raw == "" {
		return fmt.Errorf("received an empty response from the model")
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return fmt.Errorf("failed to decode model response: %w", err)
	}
	return nil
}

// extractJSON strips a surrounding markdown fence if the model added one.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		return strings.TrimSpace(text)
	}
	return text
}

const pnrToQuotePrompt = `CRITICAL TASK: Analyze the following raw GDS text which contains multiple PNRs for a group booking. Your goal is to structure this information for a price quote.

        Follow these steps precisely:
        1.  **Group by Itinerary:** Identify unique flight itineraries. Passengers with the exact same flight segments belong to the same itinerary group.
        2.  **Group by Class:** Within each itinerary group, further group passengers by their booking class (e.g., J, W, B).
        3.  **Extract Details:** For each group, extract:
            - ` + "`itineraryDetails`" + `: The full, multi-line flight segments for the itinerary group. CRITICAL: For each flight segment string from the raw text, you must reformat it to be clean and readable. The output format MUST be: ` + "`[Airline Code][Flight Number] [Origin]-[Destination] | [Date] | [Departure Time]-[Arrival Time]`" + `. For example, a raw segment like 'VN 253 J 02OCT 4 HANSGN HK1 1400 1610 02OCT E VN/EXXTGQ' MUST be converted to 'VN 253 HAN-SGN | 02OCT | 14:00-16:10'. You MUST remove the booking class, status codes (HK1), and any trailing identifiers. Preserve original line breaks between segments.
            - ` + "`passengers`" + `: A single string listing all passengers for that specific booking class within that itinerary.
            - ` + "`flightClass`" + `: Infer the Vietnamese fare family name (e.g., 'Thương gia', 'Phổ thông') based on the booking class code and your internal knowledge.
        4.  **Structure Output:** Return a single JSON object. The root object must have a key "itineraryGroups". This key holds an array of itinerary group objects. Each itinerary group object has an "itineraryDetails" string and a "priceRows" array. Each object in "priceRows" contains the "passengers" and "flightClass" for that subgroup.

        Booking Text to Analyze:
        ---
        %s
        ---
        `

// quoteResult mirrors the quote structure handed back to the front end.
type quoteResult struct {
	ItineraryGroups []struct {
		ItineraryDetails string `json:"itineraryDetails"`
		PriceRows        []struct {
			Passengers  string `json:"passengers"`
			FlightClass string `json:"flightClass"`
		} `json:"priceRows"`
	} `json:"itineraryGroups"`
}

func (s *Server) handleParsePNRToQuote(c *gin.Context) {
	var req struct {
		PNRText string `json:"pnrText"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PNRText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pnrText is required."})
		return
	}

	var result quoteResult
	if err := s.completeJSON(c.Request.Context(), fmt.Sprintf(pnrToQuotePrompt, req.PNRText), &result); err != nil {
		s.extractionError(c, "parse-pnr-to-quote", err, "Failed to parse PNR to quote.")
		return
	}
	c.JSON(http.StatusOK, result)
}

const bookingToMessagesPrompt = `
Analyze the provided flight booking confirmation and extract the key details into a JSON object. Follow these rules precisely:
1.  **Determine Status**: First, determine if the booking has been ticketed. A ticketed booking will have a ticket number (e.g., ` + "`738-1234567890`, `FA PAX...`" + `). An unticketed booking will have a ticketing time limit (e.g., ` + "`TK TL...`" + `).
2.  **ticketNumber**: If ticketed, extract the e-ticket number. If not ticketed, return an empty string.
3.  **ticketingTimeLimit**: If not ticketed, extract the time limit (e.g., from ` + "`TK TL01OCT/HANVN2205`" + `, extract ` + "`01OCT`" + `). If ticketed, return an empty string.
4.  **pnr**: Find the booking reference code (Mã đặt chỗ).
5.  **passengerName**: Extract the full passenger name(s) exactly as written.
6.  **bookingClass**: Infer the booking class AND fare family (e.g., 'Thương gia Linh hoạt') using the booking class code and your internal knowledge.
7.  **frequentFlyer**: Extract the frequent flyer number and status (e.g., 'VN9011232222 ELITE PLUS'). If not present, return an empty string.
8.  **vipInfo**: Extract any special VIP remarks (e.g., 'UVTW DANG,DBQH,PHO BI THU CHUYEN TRACH DUQH'). Do not include frequent flyer status here. If not present, return an empty string.
9.  **itinerary**: Extract all flight segments. Each segment must be on a new line and follow the format: 'HAN - SGN | VN263 | 29SEP | 20:00–22:15'.

Return a JSON object with the string keys "pnr", "passengerName", "ticketNumber", "ticketingTimeLimit", "bookingClass", "frequentFlyer", "vipInfo" and "itinerary". A field should be an empty string if its corresponding information is not found. **Crucially, either ` + "`ticketNumber`" + ` or ` + "`ticketingTimeLimit`" + ` must be an empty string.**

Booking confirmation:
---
%s
---
`

// bookingDetails is the extraction result for a single booking.
type bookingDetails struct {
	PNR                string `json:"pnr"`
	PassengerName      string `json:"passengerName"`
	TicketNumber       string `json:"ticketNumber"`
	TicketingTimeLimit string `json:"ticketingTimeLimit"`
	BookingClass       string `json:"bookingClass"`
	FrequentFlyer      string `json:"frequentFlyer"`
	VIPInfo            string `json:"vipInfo"`
	Itinerary          string `json:"itinerary"`
}

func (s *Server) handleParseBookingToMessages(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required."})
		return
	}

	var result bookingDetails
	if err := s.completeJSON(c.Request.Context(), fmt.Sprintf(bookingToMessagesPrompt, req.Content), &result); err != nil {
		s.extractionError(c, "parse-booking-to-messages", err, "Failed to parse booking to messages.")
		return
	}
	c.JSON(http.StatusOK, result)
}

const groupFarePrompt = `
Analyze the provided text, which contains a request for a group flight booking. Your task is to extract the details for each flight segment and return them as a structured JSON array.

Follow these rules precisely:
1.  **Identify Segments:** Each distinct flight request is a segment. This is usually represented by a row or a separate block of text.
2.  **Extract Fields:** For each segment, you MUST extract the following seven fields:
    *   ` + "`quantity`" + `: The number of passengers (Số lượng).
    *   ` + "`itinerary`" + `: The route, formatted as a three-letter origin code, a hyphen, and a three-letter destination code (e.g., "HAN-ICN").
    *   ` + "`date`" + `: The date of the flight. Try to format it as DD/MM/YYYY.
    *   ` + "`time`" + `: The departure and arrival times, formatted as HH:MM-HH:MM.
    *   ` + "`flightNumber`" + `: The flight number, including the airline code (e.g., "VJ962").
    *   ` + "`agent`" + `: The name of the agent or company making the request (Tên Agent/Công ty).
    *   ` + "`agentCode`" + `: The code associated with the agent (Mã Agent).
3.  **Handle Missing Data:** If a piece of information for a field is not present for a given segment, return an empty string for that field. This is especially important for ` + "`agent`" + ` and ` + "`agentCode`" + `, which may not be in the request. Do not guess or make up data.
4.  **JSON Output:** The final output MUST be a JSON array of objects. Each object represents one flight segment and contains the seven fields listed above, all strings. Do not include any other text or explanations in your response.

Request:
---
%s
---
`

// groupFareSegment is one extracted row of a group booking request.
type groupFareSegment struct {
	Quantity     string `json:"quantity"`
	Itinerary    string `json:"itinerary"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	FlightNumber string `json:"flightNumber"`
	Agent        string `json:"agent"`
	AgentCode    string `json:"agentCode"`
}

func (s *Server) handleParseGroupFare(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required."})
		return
	}

	var result []groupFareSegment
	if err := s.completeJSON(c.Request.Context(), fmt.Sprintf(groupFarePrompt, req.Content), &result); err != nil {
		s.extractionError(c, "parse-group-fare", err, "Failed to parse group fare request.")
		return
	}
	c.JSON(http.StatusOK, result)
}

const nearestAirportsPrompt = `
    Act as an airport location expert. Find the 3 closest international airports to the following location: "%s".
    Provide the airport name, IATA code, the city/country it's in, and the approximate distance from the location in Vietnamese.
    Return the result as a JSON array of objects with the string keys "airportName", "iataCode", "location" and "distance".
  `

// airportResult is one nearby airport suggestion.
type airportResult struct {
	AirportName string `json:"airportName"`
	IATACode    string `json:"iataCode"`
	Location    string `json:"location"`
	Distance    string `json:"distance"`
}

func (s *Server) handleFindNearestAirports(c *gin.Context) {
	var req struct {
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required."})
		return
	}

	var result []airportResult
	if err := s.completeJSON(c.Request.Context(), fmt.Sprintf(nearestAirportsPrompt, req.Location), &result); err != nil {
		s.extractionError(c, "find-nearest-airports", err, "Failed to find nearest airports.")
		return
	}
	if result == nil {
		result = []airportResult{}
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) extractionError(c *gin.Context, endpoint string, err error, message string) {
	if deadline := c.Request.Context().Err(); deadline != nil {
		return
	}
	logServerError(endpoint, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
