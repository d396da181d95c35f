package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/quantrun/sigval/internal/core"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var resp SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, ok := resp.Data.(map[string]any)
	if !ok || data["hello"] != "world" {
		t.Errorf("data = %v", resp.Data)
	}
	if resp.Meta.Timestamp.IsZero() {
		t.Error("meta timestamp not set")
	}
}

func TestError_CoreError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusBadRequest,
		core.WrapError(core.ErrConfigInvalid, errors.New("bad port")))

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Code != "CONFIG_INVALID" {
		t.Errorf("code = %q", resp.Error.Code)
	}
	if resp.Error.Cause != "bad port" {
		t.Errorf("cause = %q", resp.Error.Cause)
	}
}

func TestError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusInternalServerError, errors.New("boom"))

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Plain errors must not leak internals
	if resp.Error.Code != "INTERNAL_ERROR" || resp.Error.Cause != "" {
		t.Errorf("error detail = %+v", resp.Error)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{core.ErrConfigInvalid, http.StatusBadRequest},
		{core.WrapError(core.ErrEmptyTimeline, nil), http.StatusBadRequest},
		{core.ErrJobNotFound, http.StatusNotFound},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
