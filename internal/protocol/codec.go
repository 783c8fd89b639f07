package protocol

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeRequest serializes req as one JSON line and writes it to w.
func EncodeRequest(w io.Writer, req *Request) error {
	if req.ID <= 0 {
		return fmt.Errorf("request id must be positive, got %d", req.ID)
	}
	if req.Method == "" {
		return fmt.Errorf("request method is empty")
	}

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(req); err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	return nil
}

// DecodeResponse reads and deserializes the next Response line from dec.
// The decoder must wrap the session's stdout stream so partial lines are
// handled across calls.
func DecodeResponse(dec *json.Decoder) (*Response, error) {
	var resp Response
	if err := dec.Decode(&resp); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.ID <= 0 {
		return nil, fmt.Errorf("response missing positive id")
	}
	if resp.Error != nil && resp.Error.Message == "" {
		return nil, fmt.Errorf("response id %d has error with no message", resp.ID)
	}

	return &resp, nil
}
