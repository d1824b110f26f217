package chat

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a transcript entry.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Turn is one transcript entry.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// State is the dialogue state machine position.
type State int

const (
	// StateIdle is the normal topic-seeking state.
	StateIdle State = iota
	// StateAwaitingProjectChoice means a project list was just shown and
	// the next message is expected to name one.
	StateAwaitingProjectChoice
)

// Session holds the mutable dialogue state for one conversation: the
// bounded transcript, the clarification flag, and per-topic variant
// counters. Each conversation owns exactly one Session. turnMu
// serializes whole messages, so a client sending overlapping requests
// still sees one message fully processed before the next; mu guards the
// individual fields.
type Session struct {
	id string

	turnMu sync.Mutex

	mu              sync.Mutex
	turns           []Turn
	state           State
	variantIdx      map[Topic]int
	lastInteraction time.Time
	historyWindow   int
}

// NewSession creates a fresh session with a generated ID.
// historyWindow bounds the transcript length in entries (user+bot).
func NewSession(historyWindow int) *Session {
	return NewSessionWithID(uuid.NewString(), historyWindow)
}

// NewSessionWithID creates a session with a caller-supplied ID.
func NewSessionWithID(id string, historyWindow int) *Session {
	if historyWindow < 2 {
		historyWindow = 2
	}
	return &Session{
		id:            id,
		variantIdx:    make(map[Topic]int),
		historyWindow: historyWindow,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// BeginTurn blocks until any in-flight message for this session has
// finished processing. EndTurn releases the turn.
func (s *Session) BeginTurn() {
	s.turnMu.Lock()
}

// EndTurn releases the turn taken by BeginTurn.
func (s *Session) EndTurn() {
	s.turnMu.Unlock()
}

// Record appends the user message and the bot reply as two transcript
// entries, trims the window, and stamps the interaction time.
func (s *Session) Record(userText, botText string) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns,
		Turn{Speaker: SpeakerUser, Text: userText, Timestamp: now},
		Turn{Speaker: SpeakerBot, Text: botText, Timestamp: now},
	)
	if len(s.turns) > s.historyWindow {
		s.turns = s.turns[len(s.turns)-s.historyWindow:]
	}
	s.lastInteraction = now
}

// History returns a copy of the transcript in chronological order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Clear empties the transcript and resets the dialogue state.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = nil
	s.state = StateIdle
	s.variantIdx = make(map[Topic]int)
}

// State returns the current state machine position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState moves the state machine.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// LastInteraction returns when the session last processed a message.
// The zero time means no message has been processed yet.
func (s *Session) LastInteraction() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastInteraction
}

// nextVariant returns the round-robin template index for a topic.
// Consecutive calls walk the variant list so the same phrasing never
// repeats back to back when more than one variant exists.
func (s *Session) nextVariant(topic Topic, count int) int {
	if count <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.variantIdx[topic] % count
	s.variantIdx[topic]++
	return idx
}
