package cache

import (
	"bytes"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestResponseToEntry(t *testing.T) {
	tests := []struct {
		name    string
		resp    *http.Response
		ttl     time.Duration
		wantErr bool
	}{
		{
			name: "valid response",
			resp: &http.Response{
				StatusCode: 200,
				Header: http.Header{
					"Content-Type": []string{"application/json"},
				},
				Body: io.NopCloser(bytes.NewReader([]byte(`{"hits": []}`))),
			},
			ttl:     15 * time.Minute,
			wantErr: false,
		},
		{
			name: "not found response",
			resp: &http.Response{
				StatusCode: 404,
				Header:     http.Header{},
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"error": "not found"}`))),
			},
			ttl:     time.Minute,
			wantErr: false,
		},
		{
			name:    "nil response",
			resp:    nil,
			ttl:     time.Minute,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := ResponseToEntry(tt.resp, tt.ttl)
			if (err != nil) != tt.wantErr {
				t.Errorf("ResponseToEntry() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if entry == nil {
				t.Fatal("ResponseToEntry() returned nil entry")
			}

			// Body was read and restored for the caller
			body, _ := io.ReadAll(tt.resp.Body)
			if len(body) == 0 {
				t.Error("Response body was not restored")
			}
			if string(entry.Data) != string(body) {
				t.Errorf("Data = %s, want %s", entry.Data, body)
			}

			if entry.StatusCode != tt.resp.StatusCode {
				t.Errorf("StatusCode = %v, want %v", entry.StatusCode, tt.resp.StatusCode)
			}

			gotTTL := entry.TTL()
			if gotTTL > tt.ttl || gotTTL < tt.ttl-time.Second {
				t.Errorf("TTL() = %v, want about %v", gotTTL, tt.ttl)
			}
		})
	}
}
