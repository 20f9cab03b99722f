package model

// StreamChunk is one incremental unit of a model turn: either a fragment of
// natural-language text or a batch of tool-call requests. A turn's chunk
// sequence is finite and ends when the provider closes the stream.
type StreamChunk interface {
	streamChunk()
}

// TextDelta is an incremental piece of the answer, concatenated in arrival
// order by the consumer.
type TextDelta struct {
	Fragment string
}

// ToolCallBatch signals the model wants tools invoked before it can finish.
// At most one non-empty batch per turn is expected in practice.
type ToolCallBatch struct {
	Calls []ToolCall
}

func (TextDelta) streamChunk()     {}
func (ToolCallBatch) streamChunk() {}
