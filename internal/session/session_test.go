package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/rhubarb-ws/fake"
	"github.com/momentics/rhubarb-ws/protocol"
)

const testHost = "127.0.0.1:4024"

const validHandshake = "GET /ws HTTP/1.1\r\n" +
	"Host: " + testHost + "\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Protocol: rhubarb\r\n" +
	"Sec-WebSocket-Version: 13\r\n\r\n"

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func allWritten(stream *fake.Stream) []byte {
	var out []byte
	for _, chunk := range stream.Written() {
		out = append(out, chunk...)
	}
	return out
}

func TestSessionHandshakeAndEcho(t *testing.T) {
	stream := fake.NewStream()
	stream.QueueRead([]byte(validHandshake))

	sess := New(stream, testHost, zerolog.Nop(), nil)
	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run() }()

	waitFor(t, "101 response", func() bool {
		return bytes.Contains(allWritten(stream), []byte("101 Switching Protocols"))
	})
	response := string(allWritten(stream))
	if !strings.Contains(response, "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=") {
		t.Fatalf("response missing accept key:\n%s", response)
	}
	waitFor(t, "established state", func() bool {
		return sess.State() == StateEstablished
	})

	stream.QueueRead([]byte("hello rhubarb"))
	waitFor(t, "echo", func() bool {
		return bytes.Contains(allWritten(stream), []byte("hello rhubarb"))
	})

	stream.Close()
	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish after peer close")
	}
	if sess.State() != StateClosed {
		t.Fatalf("state = %v, want closed", sess.State())
	}
}

func TestSessionRejectsBadHandshake(t *testing.T) {
	stream := fake.NewStream()
	stream.QueueRead([]byte("POST /ws HTTP/1.1\r\nHost: " + testHost + "\r\n\r\n"))

	sess := New(stream, testHost, zerolog.Nop(), nil)
	err := sess.Run()
	if err == nil {
		t.Fatal("expected handshake rejection")
	}
	var perr *protocol.ProtocolError
	if !errors.As(err, &perr) {
		t.Fatalf("error type %T, want *ProtocolError", err)
	}

	response := string(allWritten(stream))
	if !strings.HasPrefix(response, "HTTP/1.1 400 Bad Request") {
		t.Fatalf("expected 400 response, got:\n%s", response)
	}
	if !strings.HasSuffix(response, "Handshake is not a GET Request") {
		t.Fatalf("400 body missing reason:\n%s", response)
	}
	if !stream.Closed() {
		t.Fatal("stream left open after rejection")
	}
	if sess.State() != StateClosed {
		t.Fatalf("state = %v, want closed", sess.State())
	}
}

func TestSessionRejectsNonUTF8Handshake(t *testing.T) {
	stream := fake.NewStream()
	stream.QueueRead([]byte{0xFF, 0xFE, 0xFD, 0x00, 0x81})

	sess := New(stream, testHost, zerolog.Nop(), nil)
	err := sess.Run()
	var encErr *protocol.EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("error = %v, want *EncodingError", err)
	}
	if !stream.Closed() {
		t.Fatal("stream left open after encoding failure")
	}
}

func TestSessionNonUTF8MessageAbortsConnection(t *testing.T) {
	stream := fake.NewStream()
	stream.QueueRead([]byte(validHandshake))

	sess := New(stream, testHost, zerolog.Nop(), nil)
	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run() }()

	waitFor(t, "established state", func() bool {
		return sess.State() == StateEstablished
	})

	stream.QueueRead([]byte{0xFF, 0xFE, 0xFD})

	select {
	case err := <-runErr:
		var encErr *protocol.EncodingError
		if !errors.As(err, &encErr) {
			t.Fatalf("error = %v, want *EncodingError", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("session kept running after non-UTF-8 message")
	}
	if sess.State() != StateClosed {
		t.Fatalf("state = %v, want closed", sess.State())
	}
	if !stream.Closed() {
		t.Fatal("stream left open after encoding failure")
	}
	if bytes.Contains(allWritten(stream), []byte{0xFF}) {
		t.Fatalf("non-UTF-8 bytes were echoed:\n%x", allWritten(stream))
	}
}

func TestSessionWrongHostGetsInvalidHostname(t *testing.T) {
	stream := fake.NewStream()
	handshake := strings.Replace(validHandshake, "Host: "+testHost, "Host: evil.example", 1)
	stream.QueueRead([]byte(handshake))

	sess := New(stream, testHost, zerolog.Nop(), nil)
	if err := sess.Run(); err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.HasSuffix(string(allWritten(stream)), "Invalid hostname") {
		t.Fatalf("expected Invalid hostname body, got:\n%s", allWritten(stream))
	}
}

func TestSessionReadErrorEndsSession(t *testing.T) {
	stream := fake.NewStream()
	stream.SetReadError(errors.New("connection reset"))

	sess := New(stream, testHost, zerolog.Nop(), nil)
	if err := sess.Run(); err == nil {
		t.Fatal("expected read error to surface")
	}
	if sess.State() != StateClosed {
		t.Fatalf("state = %v, want closed", sess.State())
	}
}
