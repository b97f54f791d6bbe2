package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/viben/pkg/domain"
)

// allRecords is the subscription key that receives every generation event.
const allRecords = "*"

// StreamManager fans generation events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // record id -> set of channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(key string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[key]; !ok {
		sm.subscribers[key] = make(map[chan<- string]struct{})
	}
	sm.subscribers[key][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[key]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, key)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(key string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[key] {
		select {
		case ch <- msg:
		default:
			// slow client
			sm.logger.Warn("SSE: client buffer full, dropping message", "key", key)
		}
	}
}

type generationMessage struct {
	RecordID   string `json:"recordId"`
	TutorialID string `json:"tutorialId,omitempty"`
	Reused     bool   `json:"reused,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

// Hooks publishes generation outcomes to subscribers of the record and to
// subscribers of every record.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerate: func(_ context.Context, e *domain.GenerationEvent) {
			msg := generationMessage{
				RecordID:   e.RecordID,
				TutorialID: e.TutorialID,
				Reused:     e.Reused,
				DurationMs: e.Duration.Milliseconds(),
			}
			if e.Err != nil {
				msg.Error = e.Err.Error()
			}
			data, err := json.Marshal(msg)
			if err != nil {
				return
			}
			sm.Broadcast(e.RecordID, string(data))
			sm.Broadcast(allRecords, string(data))
		},
	}
}

// SubscribeEvents handles GET /events (SSE). Without ?recordId every
// generation is streamed.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "streaming not supported"})
		return
	}

	key := r.URL.Query().Get("recordId")
	if key == "" {
		key = allRecords
	}

	ch, cancel := s.streams.Subscribe(key)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("SSE: subscribed", "key", key)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: generate\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
