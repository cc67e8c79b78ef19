package main

import (
	"errors"
	"fmt"
	"io"

	"braces.dev/errtrace"
	"github.com/tidwall/gjson"
)

// errMalformedRequest is returned for input that is not a valid request.
var errMalformedRequest = errors.New("malformed request")

// request is a single render request read from stdin.
//
//	{"code": "print('hi')", "lang": "python"}
//
// Missing and null fields are empty.
type request struct {
	Code string
	Lang string
}

func decodeRequest(r io.Reader) (*request, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errtrace.Wrap(fmt.Errorf("read request: %w", err))
	}

	if !gjson.ValidBytes(data) {
		return nil, errtrace.Wrap(fmt.Errorf("%w: invalid JSON", errMalformedRequest))
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errtrace.Wrap(fmt.Errorf("%w: expected a JSON object, got %v", errMalformedRequest, doc.Type))
	}

	var req request
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"code", &req.Code},
		{"lang", &req.Lang},
	} {
		v := doc.Get(field.name)
		switch {
		case !v.Exists(), v.Type == gjson.Null:
			// empty
		case v.Type == gjson.String:
			*field.dst = v.Str
		default:
			return nil, errtrace.Wrap(fmt.Errorf("%w: %q must be a string, got %v", errMalformedRequest, field.name, v.Type))
		}
	}

	return &req, nil
}
