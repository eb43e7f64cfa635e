package stream

import "fmt"

// Kind classifies a progress message so control logic never has to
// re-parse wire text.
type Kind int

const (
	// KindProgress is an informational update forwarded as-is.
	KindProgress Kind = iota
	// KindCompleted is the terminal completion sentinel.
	KindCompleted
	// KindError is the terminal error sentinel.
	KindError
)

// CompletedText is the wire-visible completion sentinel. Legacy clients
// match it case-insensitively on the trimmed frame, so the exact text is
// part of the protocol.
const CompletedText = "Video generation completed!"

// Message is one immutable progress value published for a job.
type Message struct {
	Kind Kind
	Text string
}

// Progress builds an informational message.
func Progress(text string) Message {
	return Message{Kind: KindProgress, Text: text}
}

// Completed builds the completion sentinel.
func Completed() Message {
	return Message{Kind: KindCompleted, Text: CompletedText}
}

// Errorf builds the terminal error message. The "Error:" prefix is
// wire-visible and matched by legacy clients.
func Errorf(format string, args ...any) Message {
	return Message{Kind: KindError, Text: "Error: " + fmt.Sprintf(format, args...)}
}

// Terminal reports whether the message ends a stream.
func (m Message) Terminal() bool {
	return m.Kind == KindCompleted || m.Kind == KindError
}
