package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies read by Decode.
const maxBodyBytes = 1 << 20

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Param returns a path wildcard such as {task_id}.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// QueryParam returns query parameters from the request.
func QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

type validator interface {
	Validate() error
}

// Decode reads a JSON body of at most 1MB into v, rejecting unknown fields
// and trailing data. If v implements Validate() error it is called after
// decoding.
func Decode(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("unable to read request body: %w", err)
	}
	switch {
	case len(bytes.TrimSpace(data)) == 0:
		return ErrEmptyBody
	case len(data) > maxBodyBytes:
		return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	if dec.More() {
		return errors.New("json decode: unexpected data after object")
	}

	if val, ok := v.(validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("validation: %w", err)
		}
	}
	return nil
}
