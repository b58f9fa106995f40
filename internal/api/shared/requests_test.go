package shared

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name        string
		requestBody string
		wantErr     bool
		errContains string
	}{
		{
			name:        "valid json",
			requestBody: `{"name": "test", "age": 30}`,
		},
		{
			name:        "invalid json",
			requestBody: `{"name": "test", "age": 30,}`, // trailing comma
			wantErr:     true,
			errContains: "invalid character",
		},
		{
			name:        "empty body",
			requestBody: "",
			wantErr:     true,
			errContains: "EOF",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(
				http.MethodPost,
				"/test",
				bytes.NewBufferString(tc.requestBody),
			)

			var target struct {
				Name string `json:"name"`
				Age  int    `json:"age"`
			}
			err := DecodeJSON(req, &target)

			if tc.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "test", target.Name)
			assert.Equal(t, 30, target.Age)
		})
	}
}

// errorReader fails every read, standing in for a broken request body.
type errorReader struct{}

func (er errorReader) Read(p []byte) (n int, err error) {
	return 0, io.ErrUnexpectedEOF
}

func TestDecodeJSONWithReadError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", errorReader{})

	var target struct{}
	err := DecodeJSON(req, &target)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected EOF")
}

// selfValidating exercises the Validate-method branch of ValidateRequest.
type selfValidating struct {
	Name string
}

func (v *selfValidating) Validate() error {
	if v.Name == "invalid" {
		return errors.New("name rejected")
	}
	return nil
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
	}{
		{
			name: "struct with passing Validate method",
			req:  &selfValidating{Name: "test"},
		},
		{
			name:    "struct with failing Validate method",
			req:     &selfValidating{Name: "invalid"},
			wantErr: true,
		},
		{
			name: "tagged struct passing tag validation",
			req: &struct {
				Name string `validate:"required"`
			}{Name: "test"},
		},
		{
			name: "tagged struct failing tag validation",
			req: &struct {
				Name string `validate:"required"`
			}{},
			wantErr: true,
		},
		{
			name: "untagged struct without Validate method",
			req:  &struct{ Name string }{"test"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequest(tc.req)

			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
