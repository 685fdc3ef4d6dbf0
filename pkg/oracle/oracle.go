// Package oracle is the gateway to the external text-classification oracle.
package oracle

import "context"

// RawResponse is the opaque textual payload returned by the oracle for one
// post. It is expected to contain a JSON verdict object; that expectation is
// asserted downstream by the parser, never here.
type RawResponse string

// Oracle classifies one post's text.
//
// Classify never fails from the caller's point of view: transport and oracle
// errors come back as a payload that cannot pass the parser's JSON assertion,
// with the error message inline. Every submitted post therefore yields exactly
// one result.
type Oracle interface {
	Classify(ctx context.Context, text string) RawResponse
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, text string) RawResponse

// Classify implements Oracle.
func (f Func) Classify(ctx context.Context, text string) RawResponse {
	return f(ctx, text)
}

// Static is a deterministic test double returning canned responses in order,
// then the last one forever.
type Static struct {
	Responses []RawResponse
	next      int
}

// Classify implements Oracle.
func (s *Static) Classify(_ context.Context, _ string) RawResponse {
	if len(s.Responses) == 0 {
		return ""
	}
	if s.next < len(s.Responses) {
		r := s.Responses[s.next]
		s.next++
		return r
	}
	return s.Responses[len(s.Responses)-1]
}

// ErrorPayload renders a failure as a raw payload. The "Error: " prefix keeps
// the message visible in the resulting error verdict's reasoning.
func ErrorPayload(err error) RawResponse {
	return RawResponse("Error: " + err.Error())
}
