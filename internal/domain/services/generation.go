package services

import "context"

// CompleteRequest asks for a one-shot generation.
type CompleteRequest struct {
	UserID  string `json:"-"`
	Prompt  string `json:"prompt"`
	Context string `json:"context"`
}

// StreamRequest asks for a streamed generation spliced into a chapter.
// SnapshotStart/End are rune offsets into SnapshotText, the chapter
// content as the caller saw it when the span was selected. The splice
// is validated against that snapshot so a slow stream cannot clobber
// edits made elsewhere in the meantime.
type StreamRequest struct {
	UserID        string `json:"-"`
	ProjectID     string `json:"-"`
	ChapterID     string `json:"-"`
	Prompt        string `json:"prompt"`
	SnapshotText  string `json:"snapshot_text"`
	SnapshotStart int    `json:"snapshot_start"`
	SnapshotEnd   int    `json:"snapshot_end"`
}

// Fragment is one piece of streamed generation output. Done marks the
// explicit end of the stream; no fragments follow it. Err is set on
// the final fragment when the stream failed mid-flight.
type Fragment struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
	Err  error  `json:"-"`
}

// GenerationService runs AI-assisted operations, paying for them from
// the entitlement ledger before the provider call starts.
type GenerationService interface {
	Complete(ctx context.Context, req *CompleteRequest) (string, error)
	// StreamIntoChapter streams a completion and splices the result
	// into the chapter against the request's snapshot. Fragments are
	// delivered on the returned channel, which closes after the Done
	// fragment.
	StreamIntoChapter(ctx context.Context, req *StreamRequest) (<-chan Fragment, error)
}

// GenerationCost is the flat credit price of one generation call.
// Priced per call, not per token, so authors can predict spend.
const GenerationCost int64 = 1
