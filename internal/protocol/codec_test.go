package protocol

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

func TestEncodeRequest(t *testing.T) {
	var buf bytes.Buffer
	req := &Request{ID: 1, Method: "nvim_input", Params: []any{"<Esc>"}}

	if err := EncodeRequest(&buf, req); err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	line := buf.String()
	if !strings.HasSuffix(line, "\n") {
		t.Error("encoded request is not newline-terminated")
	}
	if strings.Count(line, "\n") != 1 {
		t.Errorf("encoded request spans multiple lines: %q", line)
	}

	var decoded Request
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("round-trip unmarshal: %v", err)
	}
	if decoded.ID != 1 || decoded.Method != "nvim_input" {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestEncodeRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  *Request
	}{
		{"zero id", &Request{ID: 0, Method: "nvim_command"}},
		{"negative id", &Request{ID: -4, Method: "nvim_command"}},
		{"empty method", &Request{ID: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeRequest(&buf, tt.req); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	input := `{"id":1,"result":true}
{"id":2,"error":{"code":1,"message":"unknown command"}}
`
	dec := json.NewDecoder(strings.NewReader(input))

	resp, err := DecodeResponse(dec)
	if err != nil {
		t.Fatalf("DecodeResponse(first): %v", err)
	}
	if resp.ID != 1 || resp.Err() != nil {
		t.Errorf("first response = %+v, want id 1 with no error", resp)
	}

	resp, err = DecodeResponse(dec)
	if err != nil {
		t.Fatalf("DecodeResponse(second): %v", err)
	}
	if resp.ID != 2 {
		t.Errorf("second response id = %d, want 2", resp.ID)
	}
	if resp.Err() == nil {
		t.Fatal("second response should carry an error")
	}
	if !strings.Contains(resp.Err().Error(), "unknown command") {
		t.Errorf("error text = %q, want to mention the remote message", resp.Err())
	}

	if _, err := DecodeResponse(dec); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

func TestDecodeResponse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing id", `{"result":true}`},
		{"error without message", `{"id":3,"error":{"code":9}}`},
		{"not json", `resize failed`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := json.NewDecoder(strings.NewReader(tt.input))
			if _, err := DecodeResponse(dec); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
