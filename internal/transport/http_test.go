package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"keybridge/internal/domain"
	"keybridge/internal/requests"
	"keybridge/internal/transport"
)

func TestSendRequestDispatch(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		switch {
		case r.URL.Path == "/keys/upload":
			w.Write([]byte(`{"one_time_key_counts":{"signed_curve25519":49}}`))
		case r.URL.Path == "/keys/query":
			w.Write([]byte(`{"device_keys":{"@alice:example.org":{}}}`))
		default:
			w.Write([]byte(`{"event_id":"$abc"}`))
		}
	}))
	defer srv.Close()

	client := transport.NewClient(srv.URL)
	ctx := context.Background()

	resp, err := client.SendRequest(ctx, requests.NewOutgoingRequest(&requests.KeysUploadRequest{}))
	if err != nil {
		t.Fatalf("keys upload: %v", err)
	}
	if upload, ok := resp.(*requests.KeysUploadResponse); !ok || upload.OneTimeKeyCounts["signed_curve25519"] != 49 {
		t.Fatalf("keys upload: unexpected response %#v", resp)
	}
	if gotMethod != http.MethodPost || gotPath != "/keys/upload" {
		t.Fatalf("keys upload hit %s %s", gotMethod, gotPath)
	}

	query := requests.NewKeysQueryRequest(map[domain.UserID][]domain.DeviceID{"@alice:example.org": nil})
	resp, err = client.SendRequest(ctx, requests.NewOutgoingRequest(query))
	if err != nil {
		t.Fatalf("keys query: %v", err)
	}
	if q, ok := resp.(*requests.KeysQueryResponse); !ok || q.DeviceKeys["@alice:example.org"] == nil {
		t.Fatalf("keys query: unexpected response %#v", resp)
	}

	tdr := requests.NewToDeviceRequest(
		"@alice:example.org", domain.AllDevices,
		"m.key.verification.request", map[string]string{"from_device": "DEV1"},
	)
	if _, err = client.SendRequest(ctx, requests.NewOutgoingRequest(tdr)); err != nil {
		t.Fatalf("to-device: %v", err)
	}
	wantPath := "/sendToDevice/m.key.verification.request/" + tdr.TxnIDString()
	if gotMethod != http.MethodPut || gotPath != wantPath {
		t.Fatalf("to-device hit %s %s, want PUT %s", gotMethod, gotPath, wantPath)
	}

	rmr := requests.NewRoomMessageRequest("!room:example.org", "m.room.message", map[string]string{"body": "hi"})
	resp, err = client.SendRequest(ctx, requests.NewOutgoingRequest(rmr))
	if err != nil {
		t.Fatalf("room message: %v", err)
	}
	if msg, ok := resp.(*requests.RoomMessageResponse); !ok || msg.EventID != "$abc" {
		t.Fatalf("room message: unexpected response %#v", resp)
	}
}

func TestKeysQueryBodyEncoding(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	query := requests.NewKeysQueryRequest(map[domain.UserID][]domain.DeviceID{
		"@alice:example.org": nil,
		"@bob:example.org":   {"DEV1"},
	})
	client := transport.NewClient(srv.URL)
	if _, err := client.SendRequest(context.Background(), requests.NewOutgoingRequest(query)); err != nil {
		t.Fatalf("keys query: %v", err)
	}

	var body struct {
		DeviceKeys map[string]json.RawMessage `json:"device_keys"`
	}
	if err := json.Unmarshal(gotBody, &body); err != nil {
		t.Fatalf("request body: %v", err)
	}
	// A nil device list means "all devices", which the wire spells as an
	// empty array. null is rejected by homeservers.
	if got := string(body.DeviceKeys["@alice:example.org"]); got != "[]" {
		t.Fatalf(`all-devices query encoded as %s, want []`, got)
	}
	if got := string(body.DeviceKeys["@bob:example.org"]); got != `["DEV1"]` {
		t.Fatalf(`device list encoded as %s, want ["DEV1"]`, got)
	}
}

func TestSendRequestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	client := transport.NewClient(srv.URL)
	if _, err := client.SendRequest(context.Background(), requests.NewOutgoingRequest(&requests.SignatureUploadRequest{})); err == nil {
		t.Fatal("expected an error for a non-2xx status")
	}
}
