package protocol_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/momentics/rhubarb-ws/protocol"
)

func TestBuildHandshakeRequest(t *testing.T) {
	request, key, err := protocol.BuildHandshakeRequest("/ws", "127.0.0.1:4024")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(key) != protocol.ClientKeyLength {
		t.Fatalf("key length %d, want %d", len(key), protocol.ClientKeyLength)
	}
	for _, want := range []string{
		"GET /ws HTTP/1.1\r\n",
		"Host: 127.0.0.1:4024\r\n",
		"Upgrade: websocket\r\n",
		"Connection: Upgrade\r\n",
		"Sec-WebSocket-Key: " + key + "\r\n",
		"Sec-WebSocket-Protocol: rhubarb\r\n",
		"Sec-WebSocket-Version: 13\r\n",
	} {
		if !strings.Contains(request, want) {
			t.Fatalf("request missing %q:\n%s", want, request)
		}
	}

	// The built request must pass server-side validation as-is.
	if _, err := protocol.ValidateHandshake(request, "127.0.0.1:4024"); err != nil {
		t.Fatalf("own request rejected: %v", err)
	}
}

func TestClientKeysAreFresh(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		key, err := protocol.GenerateClientKey()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[key] {
			t.Fatalf("key %q repeated", key)
		}
		seen[key] = true
	}
}

func TestValidateServerHandshakeSuccess(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	response := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n\r\n"
	if err := protocol.ValidateServerHandshake(response, key); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateServerHandshakeRejections(t *testing.T) {
	key := "dGhlIHNhbXBsZSBub25jZQ=="
	cases := []struct {
		name     string
		response string
		reason   string
	}{
		{
			name:     "missing response code",
			response: "HTTP/1.1",
			reason:   "Missing response code",
		},
		{
			name:     "non-101 status",
			response: "HTTP/1.1 404 Not Found",
			reason:   "Invalid response code 404",
		},
		{
			name:     "missing upgrade",
			response: "HTTP/1.1 101 Switching Protocols",
			reason:   "Handshake missing Upgrade header",
		},
		{
			name:     "wrong upgrade",
			response: "HTTP/1.1 101 Switching Protocols\nUpgrade: tls",
			reason:   "Requested Upgrade was not 'websocket'",
		},
		{
			name:     "missing connection",
			response: "HTTP/1.1 101 Switching Protocols\nUpgrade: websocket",
			reason:   "Handshake missing Connection header",
		},
		{
			name: "missing accept",
			response: "HTTP/1.1 101 Switching Protocols\n" +
				"Upgrade: websocket\nConnection: Upgrade",
			reason: "Handshake missing Sec-WebSocket-Accept header",
		},
		{
			name: "wrong accept",
			response: "HTTP/1.1 101 Switching Protocols\n" +
				"Upgrade: websocket\nConnection: Upgrade\n" +
				"Sec-WebSocket-Accept: bm90IHRoZSByaWdodCBrZXk=",
			reason: "Server key invalid",
		},
	}

	for _, tc := range cases {
		err := protocol.ValidateServerHandshake(tc.response, key)
		if err == nil {
			t.Fatalf("%s: expected rejection", tc.name)
		}
		var perr *protocol.ProtocolError
		if !errors.As(err, &perr) {
			t.Fatalf("%s: error type %T, want *ProtocolError", tc.name, err)
		}
		if perr.Reason != tc.reason {
			t.Fatalf("%s: reason %q, want %q", tc.name, perr.Reason, tc.reason)
		}
	}
}

func TestValidateServerHandshakeEndToEnd(t *testing.T) {
	// Server side computes the accept from the client's own request;
	// the client must then agree with the derivation.
	request, key, err := protocol.BuildHandshakeRequest("/ws", "localhost")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	accept, err := protocol.ValidateHandshake(request, "localhost")
	if err != nil {
		t.Fatalf("server validate: %v", err)
	}
	response := protocol.SwitchingProtocolsResponse(accept)
	if err := protocol.ValidateServerHandshake(response, key); err != nil {
		t.Fatalf("client validate: %v", err)
	}
}
