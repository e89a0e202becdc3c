package curation

import (
	"bytes"
	"encoding/json"

	"gallery-delivery-api/pkg/lambda"
)

// BodyResult is the outcome of parsing a request payload: either the decoded
// fields or the error explaining why there are none.
type BodyResult struct {
	fields map[string]interface{}
	err    *Error
}

// OK returns the decoded fields and true on success
func (b BodyResult) OK() (map[string]interface{}, bool) {
	return b.fields, b.err == nil
}

// Err returns the parse failure, or nil on success
func (b BodyResult) Err() *Error {
	return b.err
}

// ParseBody turns a request payload into a field mapping. A payload that the
// gateway already decoded passes through unchanged.
func ParseBody(req *lambda.Request) BodyResult {
	if req.Decoded != nil {
		return BodyResult{fields: req.Decoded}
	}

	raw := bytes.TrimSpace(req.Body)
	if len(raw) == 0 {
		return BodyResult{err: errMissingBody}
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return BodyResult{err: errInvalidBody}
	}

	return BodyResult{fields: fields}
}
