// Package problem writes RFC 9457 problem details. The document shape
// matches the Problem schema of the books OpenAPI document.
package problem

import (
	"encoding/json"
	"net/http"
	"strings"
)

const (
	ContentType = "application/problem+json"
	blankType   = "about:blank"
)

type Problem struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Status        int            `json:"status"`
	Detail        string         `json:"detail,omitempty"`
	Instance      string         `json:"instance,omitempty"`
	Code          string         `json:"code,omitempty"`
	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`
	TraceID       string         `json:"traceId,omitempty"`

	// Extensions are merged into the top level object. They never
	// override a standard member.
	Extensions map[string]any `json:"-"`
}

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Option func(*Problem)

// New builds a 500 unless an option says otherwise. An empty title is
// derived from the status.
func New(opts ...Option) *Problem {
	p := &Problem{
		Type:   blankType,
		Status: http.StatusInternalServerError,
		Detail: "unhandled error",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.Type == "" {
		p.Type = blankType
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	if p.Title == "" {
		p.Title = "Unknown Error"
	}
	return p
}

func Write(w http.ResponseWriter, p *Problem) {
	if p == nil {
		p = Internal("server error")
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

func WithStatus(status int) Option  { return func(p *Problem) { p.Status = status } }
func WithTitle(title string) Option { return func(p *Problem) { p.Title = title } }
func WithDetail(d string) Option    { return func(p *Problem) { p.Detail = d } }
func WithType(typ string) Option    { return func(p *Problem) { p.Type = typ } }
func WithCode(code string) Option   { return func(p *Problem) { p.Code = code } }
func WithInstance(i string) Option  { return func(p *Problem) { p.Instance = i } }
func WithTraceID(id string) Option  { return func(p *Problem) { p.TraceID = id } }

func WithInvalidParam(name, reason string) Option {
	return func(p *Problem) {
		p.InvalidParams = append(p.InvalidParams, InvalidParam{Name: name, Reason: reason})
	}
}

func WithExtension(key string, value any) Option {
	return func(p *Problem) {
		if p.Extensions == nil {
			p.Extensions = map[string]any{}
		}
		p.Extensions[key] = value
	}
}

// Constructor builds a problem of a fixed status from a detail message.
type Constructor func(detail string, opts ...Option) *Problem

func withStatus(status int) Constructor {
	return func(detail string, opts ...Option) *Problem {
		return New(append([]Option{WithStatus(status), WithDetail(detail)}, opts...)...)
	}
}

var (
	BadRequest         = withStatus(http.StatusBadRequest)
	NotFound           = withStatus(http.StatusNotFound)
	MethodNotAllowed   = withStatus(http.StatusMethodNotAllowed)
	Conflict           = withStatus(http.StatusConflict)
	PreconditionFailed = withStatus(http.StatusPreconditionFailed)
	TooManyRequests    = withStatus(http.StatusTooManyRequests)
	Internal           = withStatus(http.StatusInternalServerError)
	ServiceUnavailable = withStatus(http.StatusServiceUnavailable)
)

// Validation is a 400 listing one invalid param per failed rule, with the
// reasons joined by "; " as detail.
func Validation(params []InvalidParam, opts ...Option) *Problem {
	reasons := make([]string, len(params))
	for i, ip := range params {
		reasons[i] = ip.Reason
	}
	base := []Option{
		WithCode("validation_error"),
		func(p *Problem) { p.InvalidParams = append(p.InvalidParams, params...) },
	}
	return BadRequest(strings.Join(reasons, "; "), append(base, opts...)...)
}

func (p Problem) MarshalJSON() ([]byte, error) {
	type plain Problem
	base, err := json.Marshal(plain(p))
	if err != nil || len(p.Extensions) == 0 {
		return base, err
	}
	merged := make(map[string]json.RawMessage, len(p.Extensions)+8)
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extensions {
		if _, taken := merged[k]; taken {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}
