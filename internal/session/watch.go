package session

import "github.com/jcallahan/tastemap/internal/domain"

// notificationDisplayMS is how long the UI shows a notification before
// auto-dismissing it.
const notificationDisplayMS = 4000

const (
	levelSuccess = "success"
	levelError   = "error"
)

// Notification is one short-lived, human-readable outcome message. Every
// mutating operation emits exactly one.
type Notification struct {
	Level     string `json:"level"`
	Message   string `json:"message"`
	DisplayMS int    `json:"displayMs"`
}

// Update is the envelope pushed to watchers: a merged change event, a
// notification, or a sync-status transition. Exactly one field is set.
type Update struct {
	Event  *domain.ChangeEvent `json:"event,omitempty"`
	Notice *Notification       `json:"notice,omitempty"`
	Status domain.SyncStatus   `json:"status,omitempty"`
}

// watcherBuffer bounds undelivered updates per watcher; a watcher that falls
// further behind loses updates rather than stalling the session.
const watcherBuffer = 64

// Watch registers for session updates. The returned cancel func releases the
// registration and closes the channel.
func (s *Session) Watch() (<-chan Update, func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	ch := make(chan Update, watcherBuffer)
	if s.watchDone {
		close(ch)
		return ch, func() {}
	}

	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = ch

	cancel := func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
	}
	return ch, cancel
}

func (s *Session) notify(level, message string) {
	s.broadcast(Update{Notice: &Notification{
		Level:     level,
		Message:   message,
		DisplayMS: notificationDisplayMS,
	}})
}

func (s *Session) broadcast(u Update) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	for id, w := range s.watchers {
		select {
		case w <- u:
		default:
			s.logger.Warn("dropping update for slow watcher", "watcher", id)
		}
	}
}

func (s *Session) closeWatchers() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	if s.watchDone {
		return
	}
	s.watchDone = true
	for id, w := range s.watchers {
		delete(s.watchers, id)
		close(w)
	}
}
