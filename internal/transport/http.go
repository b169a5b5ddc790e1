package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"keybridge/internal/domain"
	"keybridge/internal/requests"
	"keybridge/internal/services/exchange"
)

// Client talks to a homeserver over HTTP. It dispatches each outgoing
// request kind to its endpoint and decodes the typed response; correlation
// is positional, the response returned by SendRequest answers the request
// that was passed in.
type Client struct {
	Base string
	HTTP *http.Client
}

// NewClient returns a client for the homeserver at base.
func NewClient(base string) *Client { return &Client{Base: base, HTTP: http.DefaultClient} }

// SendRequest performs req and returns its response view.
//
// The switch is exhaustive over the closed request set; a payload type this
// client does not know is a bug, not a runtime condition.
func (c *Client) SendRequest(ctx context.Context, req *requests.OutgoingRequest) (requests.IncomingResponse, error) {
	switch r := req.Request().(type) {
	case *requests.KeysUploadRequest:
		out := &requests.KeysUploadResponse{}
		return out, c.do(ctx, http.MethodPost, "/keys/upload", r, out)

	case *requests.KeysQueryRequest:
		body := struct {
			Timeout    int64          `json:"timeout,omitempty"`
			DeviceKeys map[string]any `json:"device_keys"`
			Token      string         `json:"token,omitempty"`
		}{
			Timeout:    r.Timeout.Milliseconds(),
			DeviceKeys: make(map[string]any, len(r.DeviceKeys)),
			Token:      r.Token,
		}
		for user, devices := range r.DeviceKeys {
			if devices == nil {
				// "all devices" is an empty JSON array, not null.
				devices = []domain.DeviceID{}
			}
			body.DeviceKeys[string(user)] = devices
		}
		out := &requests.KeysQueryResponse{}
		return out, c.do(ctx, http.MethodPost, "/keys/query", body, out)

	case *requests.ToDeviceRequest:
		path := "/sendToDevice/" + url.PathEscape(string(r.EventType)) + "/" + r.TxnIDString()
		body := struct {
			Messages any `json:"messages"`
		}{Messages: r.Messages}
		out := &requests.ToDeviceResponse{}
		return out, c.do(ctx, http.MethodPut, path, body, out)

	case *requests.SignatureUploadRequest:
		out := &requests.SignatureUploadResponse{}
		return out, c.do(ctx, http.MethodPost, "/keys/signatures/upload", r.SignedKeys, out)

	case *requests.RoomMessageRequest:
		path := "/rooms/" + url.PathEscape(string(r.RoomID)) +
			"/send/" + url.PathEscape(string(r.EventType)) + "/" + r.TxnID.String()
		out := &requests.RoomMessageResponse{}
		return out, c.do(ctx, http.MethodPut, path, r.Content, out)
	}
	panic(fmt.Sprintf("transport: unknown outgoing request type %T", req.Request()))
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("homeserver %s %s: %s", method, path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ exchange.Transport = (*Client)(nil)
