package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"tkta/config"
	"tkta/model"
	"tkta/tools"
)

type chatRequest struct {
	History []chatHistoryMessage `json:"history"`
	Message string               `json:"message"`
	Image   *chatImage           `json:"image"`
}

type chatHistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatImage struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// handleChat streams the answer as newline-delimited {"text": ...} objects,
// running the full tool round server-side between the two streaming phases.
// The client sees only text; tool traffic never leaves the server.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body."})
		return
	}

	messages := make([]model.Message, 0, len(req.History)+2)
	messages = append(messages, model.Message{Role: model.RoleSystem, Content: tools.SystemInstruction})
	for _, h := range req.History {
		messages = append(messages, model.Message{Role: h.Role, Content: h.Content})
	}
	userMsg := model.Message{Role: model.RoleUser, Content: req.Message}
	if req.Image != nil {
		data, err := base64.StdEncoding.DecodeString(req.Image.Data)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data."})
			return
		}
		userMsg.Image = &model.ImageAttachment{Data: data, MimeType: req.Image.MimeType}
	}
	messages = append(messages, userMsg)

	ctx := c.Request.Context()
	wrote := false
	writeText := func(text string) error {
		line, err := json.Marshal(gin.H{"text": text})
		if err != nil {
			return err
		}
		if !wrote {
			c.Header("Content-Type", "application/json")
			wrote = true
		}
		if _, err := c.Writer.Write(append(line, '\n')); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	var toolCalls []model.ToolCall
	err := s.provider.ChatWithTools(ctx, messages, tools.Declarations(), func(chunk string, calls []model.ToolCall) error {
		if chunk != "" {
			if err := writeText(chunk); err != nil {
				return err
			}
		}
		// Accumulate rather than overwrite: a backend may deliver the
		// batch across several callback invocations.
		toolCalls = append(toolCalls, calls...)
		return nil
	})
	if err != nil {
		s.chatError(c, wrote, err)
		return
	}

	if len(toolCalls) > 0 {
		results := s.executor.ExecuteBatch(ctx, toolCalls)
		followUp := append(messages,
			model.Message{Role: model.RoleModel, ToolCalls: toolCalls},
			model.Message{Role: model.RoleTool, ToolResults: results},
		)
		err := s.provider.ChatWithTools(ctx, followUp, tools.Declarations(), func(chunk string, calls []model.ToolCall) error {
			if chunk != "" {
				return writeText(chunk)
			}
			return nil
		})
		if err != nil {
			s.chatError(c, wrote, err)
			return
		}
	}
}

// chatError reports a streaming failure. Once bytes are on the wire the
// status line is gone, so mid-stream failures just end the response.
func (s *Server) chatError(c *gin.Context, wrote bool, err error) {
	if config.DebugLog != nil {
		config.DebugLog.Printf("[Server] Chat stream failed: %v", err)
	}
	if !wrote {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process chat message."})
	}
}
