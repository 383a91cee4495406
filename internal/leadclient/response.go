package leadclient

import (
	"bytes"
	"encoding/json"
)

// ResponseKind tags a decoded lead endpoint response
type ResponseKind int

const (
	// Undecodable responses are not JSON objects
	Undecodable ResponseKind = iota
	// Accepted responses carry success=true on a 2xx status
	Accepted
	// Rejected responses are JSON objects that did not accept the lead
	Rejected
)

// Response is the lead endpoint reply decoded from the wire
type Response struct {
	Kind       ResponseKind
	StatusCode int
	Message    string
	Detail     string
	LeadID     string
}

type wireResponse struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	LeadID  string          `json:"leadId"`
	Detail  json.RawMessage `json:"detail"`
}

// DecodeResponse classifies a reply. A detail that is not a plain string (for
// example a list of field errors) is dropped so the caller falls back to its
// generic message.
func DecodeResponse(statusCode int, body []byte) Response {
	resp := Response{StatusCode: statusCode}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return resp
	}

	var wire wireResponse
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return resp
	}

	if len(wire.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(wire.Detail, &detail); err == nil {
			resp.Detail = detail
		}
	}

	if is2xx(statusCode) && wire.Success != nil && *wire.Success {
		resp.Kind = Accepted
		resp.Message = wire.Message
		resp.LeadID = wire.LeadID
		return resp
	}

	resp.Kind = Rejected
	return resp
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}
