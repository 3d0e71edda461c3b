package client

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arcitech/arcdash/internal/nav"
	"github.com/arcitech/arcdash/internal/tokenstore"
)

// CacheBustParam is added to every outbound request.
const CacheBustParam = "_t"

// RequestIDHeader correlates a request with its log lines.
const RequestIDHeader = "X-Request-ID"

// pipeline wraps every call the Client makes. Outbound it attaches the
// bearer token and cache buster; inbound it classifies failures, ends the
// session on 401 and annotates every error it returns.
type pipeline struct {
	store   tokenstore.Store
	signals nav.Emitter
	logger  *slog.Logger
	env     string
	debug   bool
	now     func() time.Time
}

func (p *pipeline) outbound(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.store != nil {
		if tok, ok := p.store.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set(RequestIDHeader, uuid.NewString())

	q := req.URL.Query()
	q.Set(CacheBustParam, strconv.FormatInt(p.now().UnixMilli(), 10))
	req.URL.RawQuery = q.Encode()
}

// buildFailed logs a request that could not be constructed and returns the
// error unchanged inside a RequestError.
func (p *pipeline) buildFailed(method, path string, err error) error {
	p.logger.Error("request error", "method", method, "path", path, "error", err)
	return &RequestError{Err: err, Annotation: p.annotate(msgUnexpected)}
}

// undecodable reports a 2xx response whose body is not the expected JSON.
func (p *pipeline) undecodable(req *http.Request, status int, err error) error {
	p.logger.Error("invalid response body",
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"request_id", req.Header.Get(RequestIDHeader),
		"error", err,
	)
	return &ResponseError{
		Method:     req.Method,
		Path:       req.URL.Path,
		Status:     status,
		Err:        err,
		Annotation: p.annotate(msgUnexpected),
	}
}

func (p *pipeline) succeeded(req *http.Request, resp *http.Response) {
	if !p.debug {
		return
	}
	p.logger.Debug("api response",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
	)
}

// unreachable handles a request that got no response at all. There is no
// redirect; the caller decides what to show.
func (p *pipeline) unreachable(req *http.Request, err error) error {
	p.logger.Error("network error: check that the API server is running and reachable",
		"method", req.Method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(RequestIDHeader),
		"error", err,
	)
	return &NetworkError{
		Method:     req.Method,
		Path:       req.URL.Path,
		Err:        err,
		Annotation: p.annotate(msgUnreachable),
	}
}

// rejected handles a response with status >= 400. Anonymous calls (login,
// registration) report credential failures and never end a session.
func (p *pipeline) rejected(req *http.Request, status int, body []byte, anonymous bool) error {
	p.logger.Warn("api error",
		"method", req.Method,
		"path", req.URL.Path,
		"status", status,
		"request_id", req.Header.Get(RequestIDHeader),
	)

	if !anonymous {
		switch status {
		case http.StatusUnauthorized:
			p.endSession(req)
		case http.StatusForbidden:
			p.emit(nav.Signal{Kind: nav.SignalForbidden, Source: req.URL.Path})
		}
	}

	return &HTTPError{
		StatusCode: status,
		Message:    serverMessage(body),
		Method:     req.Method,
		Path:       req.URL.Path,
		Annotation: p.annotate(statusMessage(status)),
	}
}

// endSession is the forced logout: token and cached role are discarded and
// the listener is told to show the login surface with the expired marker.
// Safe to run any number of times.
func (p *pipeline) endSession(req *http.Request) {
	if p.store != nil {
		if err := tokenstore.Purge(p.store); err != nil {
			p.logger.Warn("clear session after 401", "error", err)
		}
	}
	p.logger.Info("session expired", "path", req.URL.Path)
	p.emit(nav.Signal{Kind: nav.SignalSessionExpired, Source: req.URL.Path})
}

func (p *pipeline) emit(s nav.Signal) {
	if p.signals != nil {
		p.signals.Emit(s)
	}
}

func (p *pipeline) annotate(msg string) Annotation {
	return Annotation{
		FriendlyMessage: msg,
		Timestamp:       p.now().UTC(),
		Environment:     p.env,
	}
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error
// body, falling back to short plain-text bodies.
func serverMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
