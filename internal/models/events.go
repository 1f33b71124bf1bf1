package models

// Event kinds carried in StreamEvent.Type.
const (
	EventReasoning = "reasoning"
	EventToolCall  = "tool_call"
	EventResponse  = "response"
	EventError     = "error"
	EventDone      = "done"
)

// ToolWebSearch is the only tool surfaced on the stream.
const ToolWebSearch = "web_search"

// StreamEvent is one frame of the per-request event stream, sent from the
// orchestrator to the SSE writer. Tool, Input and Output are set only on
// tool_call events.
type StreamEvent struct {
	Type    string          `json:"type"` // "reasoning", "tool_call", "response", "error", "done"
	Content string          `json:"content,omitempty"`
	Tool    string          `json:"tool,omitempty"`
	Input   string          `json:"input,omitempty"`
	Output  *SearchResponse `json:"output,omitempty"`
}

// ReasoningEvent builds a reasoning progress frame.
func ReasoningEvent(content string) StreamEvent {
	return StreamEvent{Type: EventReasoning, Content: content}
}

// ToolCallEvent builds the single web-search tool frame.
func ToolCallEvent(query string, output *SearchResponse) StreamEvent {
	return StreamEvent{Type: EventToolCall, Tool: ToolWebSearch, Input: query, Output: output}
}

// ResponseEvent builds the final answer frame.
func ResponseEvent(content string) StreamEvent {
	return StreamEvent{Type: EventResponse, Content: content}
}

// ErrorEvent builds the terminal error frame.
func ErrorEvent(content string) StreamEvent {
	return StreamEvent{Type: EventError, Content: content}
}

// DoneEvent builds the terminal success frame.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}
