package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tkta/model"
)

type timaticLookupRequest struct {
	Nationality   string `json:"nationality"`
	Destination   string `json:"destination"`
	TransitPoints string `json:"transitPoints"`
	BookingText   string `json:"bookingText"`
}

// extractedTimaticDetails is what the extraction prompt must return for the
// booking-text mode.
type extractedTimaticDetails struct {
	Nationality   string   `json:"nationality"`
	Destination   string   `json:"destination"`
	TransitPoints []string `json:"transitPoints"`
}

const timaticExtractionPrompt = `
    Analyze the provided flight booking text to extract information needed for a TIMATIC (visa requirements) lookup.
    Your task is to identify the passenger's nationality, their final destination, and any transit points.

    Rules:
    1.  **Nationality:** Find the passenger's nationality. Look for fields like 'NATIONALITY', 'QUOC TICH', or infer it from passport details (e.g., 'P/VNM/...'). If multiple nationalities are present, pick the first one. If not found, return an empty string.
    2.  **Destination:** Identify the final destination city/country of the entire journey.
    3.  **Transit Points:** List all intermediate stops where the passenger gets off the plane and boards another one. Do not include simple technical stops. If there are no transit points, return an empty array.
    4.  **JSON Output:** The final output MUST be a JSON object with the keys "nationality" (string), "destination" (string) and "transitPoints" (array of strings).

    Booking Text:
    ---
    %s
    ---
    `

// handleTimaticLookup serves both lookup modes: an explicit
// nationality/destination pair with comma-separated transit points, or a raw
// booking text from which those details are first extracted.
func (s *Server) handleTimaticLookup(c *gin.Context) {
	var req timaticLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}
	ctx := c.Request.Context()

	if req.BookingText != "" {
		var details extractedTimaticDetails
		prompt := fmt.Sprintf(timaticExtractionPrompt, req.BookingText)
		if err := s.completeJSON(ctx, prompt, &details); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to perform TIMATIC lookup."})
			return
		}
		if details.Nationality == "" || details.Destination == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not automatically determine Nationality or Destination from booking."})
			return
		}
		result := s.executor.LookupTimatic(ctx, model.TimaticArgs{
			Nationality:   details.Nationality,
			Destination:   details.Destination,
			TransitPoints: details.TransitPoints,
		})
		c.JSON(http.StatusOK, gin.H{"timaticResult": result, "extractedDetails": details})
		return
	}

	if req.Nationality == "" || req.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nationality and Destination are required for manual lookup."})
		return
	}
	var transit []string
	for _, p := range strings.Split(req.TransitPoints, ",") {
		if p = strings.TrimSpace(p); p != "" {
			transit = append(transit, p)
		}
	}
	result := s.executor.LookupTimatic(ctx, model.TimaticArgs{
		Nationality:   req.Nationality,
		Destination:   req.Destination,
		TransitPoints: transit,
	})
	c.JSON(http.StatusOK, gin.H{"timaticResult": result})
}
