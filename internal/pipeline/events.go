// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

// EventType names an event on the run stream.
type EventType string

const (
	EventStatus   EventType = "status"
	EventResult   EventType = "result"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Status is the state carried by a status event.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Event is one progress notification. Type selects which fields are set:
// status carries Agent, Status, Message; result carries Agent, Content;
// complete carries Filename, Filepath; error carries Message.
type Event struct {
	Type     EventType `json:"-"`
	RunID    string    `json:"run_id,omitempty"`
	Agent    Stage     `json:"agent,omitempty"`
	Status   Status    `json:"status,omitempty"`
	Message  string    `json:"message,omitempty"`
	Content  string    `json:"content,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Filepath string    `json:"filepath,omitempty"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}

// maxEvents bounds the events of one run: retrieval running and done, three
// per stage, and one terminal event.
var maxEvents = 2 + 3*len(Stages) + 1

// emitter stamps events with the run ID and delivers them. A nil channel
// discards events. The channel is sized to maxEvents, so sends never block.
type emitter struct {
	ch    chan<- Event
	runID string
}

func (em emitter) send(e Event) {
	if em.ch == nil {
		return
	}
	e.RunID = em.runID
	em.ch <- e
}

func (em emitter) status(stage Stage, st Status, msg string) {
	em.send(Event{Type: EventStatus, Agent: stage, Status: st, Message: msg})
}
