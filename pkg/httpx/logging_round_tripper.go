package httpx

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/rs/xid"

	"garthbid/pkg/contextx"
	"garthbid/pkg/logx"
)

// HeaderTraceID carries the trace id between the API client and the server.
const HeaderTraceID = "X-Trace-Id"

const contentTypeEventStream = "text/event-stream"

//go:generate moq -rm -out sensitive_data_masker_mock.gen.go . sensitiveDataMasker:SensitiveDataMaskerMock
type sensitiveDataMasker interface {
	Mask([]byte) []byte
}

// LoggingRoundTripper logs outgoing API calls and forwards the trace id from
// the request context, so client and server log lines correlate.
// Event stream bodies are never dumped: they stay open until the caller
// cancels.
type LoggingRoundTripper struct {
	next                http.RoundTripper
	sensitiveDataMasker sensitiveDataMasker
	logFieldMaxLen      int
}

func NewLoggingRoundTripper(
	next http.RoundTripper,
	opts ...Option,
) LoggingRoundTripper {
	rt := LoggingRoundTripper{
		next:                next,
		sensitiveDataMasker: logx.NewNopSensitiveDataMasker(),
	}

	for _, opt := range opts {
		opt(&rt)
	}

	return rt
}

func (rt LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	requestID := xid.New().String()

	if traceID, err := contextx.TraceIDFromContext(ctx); err == nil && req.Header.Get(HeaderTraceID) == "" {
		req = req.Clone(ctx)
		req.Header.Set(HeaderTraceID, traceID.String())
	}

	reqBytes, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		logger(ctx).Error("httputil.DumpRequestOut", slog.String(logx.FieldRequestID, requestID), logx.Error(err))
	}

	logger(ctx).Info(
		logx.FieldHTTPRequest,
		slog.String(logx.FieldRequestID, requestID),
		slog.String(logx.FieldHTTPMethod, req.Method),
		slog.String(logx.FieldURL, req.URL.Path),
		slog.String(logx.FieldRequestBody, rt.trim(reqBytes)),
	)

	start := time.Now()

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip %w", err)
	}

	respBytes, err := httputil.DumpResponse(resp, !isEventStream(resp))
	if err != nil {
		logger(ctx).Error("httputil.DumpResponse", slog.String(logx.FieldRequestID, requestID), logx.Error(err))
	}

	logger(ctx).Info(
		logx.FieldHTTPResponse,
		slog.String(logx.FieldRequestID, requestID),
		slog.Int(logx.FieldResponseStatus, resp.StatusCode),
		slog.String(logx.FieldResponseBody, rt.trim(respBytes)),
		slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
	)

	return resp, nil
}

func (rt LoggingRoundTripper) trim(dump []byte) string {
	if rt.logFieldMaxLen != 0 && len(dump) > rt.logFieldMaxLen {
		dump = dump[:rt.logFieldMaxLen]
	}

	return string(rt.sensitiveDataMasker.Mask(dump))
}

func isEventStream(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == contentTypeEventStream
}
