package tools

import (
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"tkta/model"
)

// Declarations returns the tool definitions declared to the model on every
// chat turn. The schemas are provider-neutral; the provider package converts
// them to each backend's native format.
func Declarations() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        model.ToolLookupTimatic,
			Description: "Looks up visa, health, and transit requirements from the TIMATIC database. Can handle complex routes with multiple transit points and suggest alternative transit routes if the requested one has issues.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"nationality": map[string]any{
						"type":        "string",
						"description": `The nationality of the passenger (e.g., "Việt Nam").`,
					},
					"destination": map[string]any{
						"type":        "string",
						"description": `The final destination country (e.g., "Mỹ").`,
					},
					"transitPoints": map[string]any{
						"type":        "array",
						"description": "An optional list of countries the passenger will transit through.",
						"items": map[string]any{
							"type": "string",
						},
					},
					"suggestAlternatives": map[string]any{
						"type":        "boolean",
						"description": "If set to true, the tool will suggest alternative transit routes if the primary route is problematic (e.g., requires a difficult visa).",
					},
				},
				Required: []string{"nationality", "destination"},
			},
		},
		{
			Name:        model.ToolGenerateSrDocs,
			Description: "Generates the Amadeus (1A) SR DOCS command string based on passenger passport details.",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"issuingCountryCode": map[string]any{
						"type":        "string",
						"description": "The passport's issuing country as a 3-letter IATA country code (e.g., VNM for Vietnam). Infer this from context if not explicitly provided.",
					},
					"passportNumber": map[string]any{
						"type":        "string",
						"description": "The passenger's passport number.",
					},
					"nationalityCode": map[string]any{
						"type":        "string",
						"description": "The passenger's nationality as a 3-letter IATA country code (e.g., VNM for Vietnam).",
					},
					"dateOfBirth": map[string]any{
						"type":        "string",
						"description": "The passenger's date of birth in DDMMMYY format (e.g., 01JAN90). You MUST convert natural language dates (e.g., 'January 1st, 1990', '01/01/1990') into this specific format.",
					},
					"gender": map[string]any{
						"type":        "string",
						"description": "The passenger's gender, must be 'M' for male or 'F' for female.",
					},
					"passportExpiryDate": map[string]any{
						"type":        "string",
						"description": "The passport's expiry date in DDMMMYY format (e.g., 20APR28). You MUST convert natural language dates (e.g., 'April 20, 2028', '20/04/2028') into this specific format.",
					},
					"lastName": map[string]any{
						"type":        "string",
						"description": "The passenger's last name or surname (e.g., 'NGUYEN').",
					},
					"firstName": map[string]any{
						"type":        "string",
						"description": "The passenger's first and middle names (e.g., 'THI HUONG').",
					},
				},
				Required: []string{"issuingCountryCode", "passportNumber", "nationalityCode", "dateOfBirth", "gender", "passportExpiryDate", "lastName", "firstName"},
			},
		},
	}
}
