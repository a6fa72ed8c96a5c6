package server

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"garthbid/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// eventStream пишет server-sent events. Заголовки уходят с первым
// событием, так что ошибка до него ещё может быть отдана обычным JSON.
type eventStream struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func newEventStream(w http.ResponseWriter) *eventStream {
	return &eventStream{w: w, rc: http.NewResponseController(w)}
}

func (s *eventStream) send(event string, data any) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if _, err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, b); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	if err = s.rc.Flush(); err != nil {
		return fmt.Errorf("rc.Flush: %w", err)
	}

	return nil
}

// sendOrLog для колбэков, которые не могут вернуть ошибку. Возвращает false,
// если в поток писать уже нельзя.
func (s *eventStream) sendOrLog(r *http.Request, event string, data any) bool {
	if err := s.send(event, data); err != nil {
		logger(r.Context()).Warn("event stream closed", logx.Error(err))
		return false
	}
	return true
}
