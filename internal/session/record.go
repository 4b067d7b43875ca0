package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Task is the question currently awaiting an answer.
type Task struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	CountAnswer int    `json:"count_answer"`
}

// Record is the durable per-user document. The JSON layout is shared with
// deployments that already hold records, keep field names stable.
type Record struct {
	Score         int      `json:"score"`
	Task          *Task    `json:"task,omitempty"`
	SeenQuestions []string `json:"seen_questions,omitempty"`
}

type Phase int

const (
	PhaseNoTask Phase = iota
	PhaseHasTask
)

func (p Phase) String() string {
	if p == PhaseHasTask {
		return "has_task"
	}
	return "no_task"
}

// Keyboard maps a phase to the quick replies the transport should offer.
func (p Phase) Keyboard() Keyboard {
	if p == PhaseHasTask {
		return KeyboardAnswer
	}
	return KeyboardNewQuestion
}

// Phase is derived from the record only; there is no stored state field.
func (r Record) Phase() Phase {
	if r.Task != nil {
		return PhaseHasTask
	}
	return PhaseNoTask
}

func (r Record) HasSeen(digest string) bool {
	return slices.Contains(r.SeenQuestions, digest)
}

func (r *Record) MarkSeen(digest string) {
	if !r.HasSeen(digest) {
		r.SeenQuestions = append(r.SeenQuestions, digest)
	}
}

func EncodeRecord(r Record) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal session record: %w", err)
	}
	return payload, nil
}

// DecodeRecord never repairs a document: anything that does not parse into
// a valid record is ErrMalformedRecord.
func DecodeRecord(payload []byte) (Record, error) {
	if trimmed := bytes.TrimSpace(payload); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Record{}, fmt.Errorf("%w: empty document", ErrMalformedRecord)
	}
	var r Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if r.Score < 0 {
		return Record{}, fmt.Errorf("%w: negative score %d", ErrMalformedRecord, r.Score)
	}
	if r.Task != nil && r.Task.Answer == "" {
		return Record{}, fmt.Errorf("%w: task without answer", ErrMalformedRecord)
	}
	if r.Task != nil && r.Task.CountAnswer < 0 {
		return Record{}, fmt.Errorf("%w: negative count_answer %d", ErrMalformedRecord, r.Task.CountAnswer)
	}
	return r, nil
}
