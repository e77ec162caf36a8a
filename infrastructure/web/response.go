package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// NoResponse tells Respond that the handler has already written the
// response or taken over the connection.
type NoResponse struct{}

func NewNoResponse() NoResponse {
	return NoResponse{}
}

func (NoResponse) Encode() ([]byte, string, error) {
	return nil, "", nil
}

// JSONResponse encodes Data as JSON with Status, 200 when unset.
type JSONResponse[T any] struct {
	Data   T
	Status int
}

func NewJSONResponse[T any](data T) *JSONResponse[T] {
	return &JSONResponse[T]{Data: data}
}

func NewJSONResponseWithStatus[T any](data T, status int) *JSONResponse[T] {
	return &JSONResponse[T]{Data: data, Status: status}
}

func (j *JSONResponse[T]) Encode() ([]byte, string, error) {
	data, err := json.Marshal(j.Data)
	if err != nil {
		return nil, "", err
	}
	return data, "application/json; charset=utf-8", nil
}

func (j *JSONResponse[T]) HTTPStatus() int {
	return statusOr(j.Status, http.StatusOK)
}

// BytesResponse sends pre-encoded bytes, such as a rendered document.
type BytesResponse struct {
	Data        []byte
	ContentType string
	Status      int
}

func NewBytesResponse(data []byte, contentType string) *BytesResponse {
	return &BytesResponse{Data: data, ContentType: contentType}
}

func (b *BytesResponse) Encode() ([]byte, string, error) {
	return b.Data, b.ContentType, nil
}

func (b *BytesResponse) HTTPStatus() int {
	return statusOr(b.Status, http.StatusOK)
}

func statusOr(status, fallback int) int {
	if status == 0 {
		return fallback
	}
	return status
}

type httpStatus interface {
	HTTPStatus() int
}

// Respond writes resp to w. A nil resp is 204 No Content; an error that does
// not carry its own status is 500.
func Respond(ctx context.Context, w http.ResponseWriter, resp Encoder) error {
	if _, ok := resp.(NoResponse); ok {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return errors.New("client disconnected, do not send response")
	}
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return nil
	}

	status := http.StatusOK
	switch v := resp.(type) {
	case httpStatus:
		status = v.HTTPStatus()
	case error:
		status = http.StatusInternalServerError
	}

	data, contentType, err := resp.Encode()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("respond: encode: %w", err)
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("respond: write: %w", err)
	}
	return nil
}
