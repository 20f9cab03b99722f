package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type gdsEncoderRequest struct {
	Tool   string            `json:"tool"`
	Params map[string]string `json:"params"`
}

// handleGDSEncoder answers the fixed set of Amadeus helper lookups. Each
// tool maps to one Vietnamese expert prompt; the model's answer is returned
// verbatim.
func (s *Server) handleGDSEncoder(c *gin.Context) {
	var req gdsEncoderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	var prompt string
	switch req.Tool {
	case "airline_airport_lookup":
		prompt = fmt.Sprintf(`Với vai trò là chuyên gia GDS Amadeus, hãy cung cấp lệnh và kết quả cho việc mã hóa/giải mã '%s'. Đây có thể là mã/tên hãng hàng không, sân bay, hoặc thành phố. Trình bày rõ ràng lệnh và kết quả. Phản hồi bằng tiếng Việt.`, req.Params["query"])
	case "equipment_lookup":
		prompt = fmt.Sprintf(`Với vai trò là chuyên gia GDS Amadeus, hãy cung cấp lệnh và kết quả cho việc tra cứu mã máy bay '%s'. Trình bày rõ ràng lệnh và kết quả. Phản hồi bằng tiếng Việt.`, req.Params["code"])
	case "seat_map_lookup":
		prompt = fmt.Sprintf(`Với vai trò là chuyên gia GDS Amadeus, hãy cung cấp chuỗi lệnh để hiển thị sơ đồ ghế ngồi cho chuyến bay %s ngày %s chặng %s. Giải thích từng bước và cho ví dụ kết quả có thể trông như thế nào. Phản hồi bằng tiếng Việt.`, req.Params["flightNumber"], req.Params["date"], req.Params["segment"])
	case "currency_conversion":
		date := req.Params["date"]
		if date == "" {
			date = "hôm nay"
		}
		prompt = fmt.Sprintf(`Với vai trò là chuyên gia GDS Amadeus, hãy cung cấp lệnh và kết quả quy đổi %s %s sang %s cho ngày %s. Trình bày rõ ràng lệnh và kết quả. Phản hồi bằng tiếng Việt.`, req.Params["amount"], req.Params["from"], req.Params["to"], date)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid GDS tool specified."})
		return
	}

	text, err := s.provider.Complete(c.Request.Context(), "", prompt)
	if err != nil {
		logServerError("gds-encoder", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run GDS encoder tool."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": text})
}
