package transport

import (
	"net"
	"testing"
)

func TestAnonDHHandshakeEncryptsRoundTrip(t *testing.T) {
	connA, connB := net.Pipe()
	defer connA.Close()
	defer connB.Close()

	type result struct {
		t   *Transport
		err error
	}
	serverc := make(chan result, 1)
	clientc := make(chan result, 1)

	go func() {
		tr, err := WrapAnonDHServer(connA)
		serverc <- result{tr, err}
	}()
	go func() {
		tr, err := WrapAnonDHClient(connB)
		clientc <- result{tr, err}
	}()

	server := <-serverc
	client := <-clientc
	if server.err != nil {
		t.Fatalf("WrapAnonDHServer: %v", server.err)
	}
	if client.err != nil {
		t.Fatalf("WrapAnonDHClient: %v", client.err)
	}

	payload := []byte("session key negotiated")
	errc := make(chan error, 1)
	go func() { errc <- server.t.Stream.SendBytes(payload) }()

	got, err := client.t.Stream.RecvBytes(len(payload))
	if err != nil {
		t.Fatalf("RecvBytes: %v", err)
	}
	if err := <-errc; err != nil {
		t.Fatalf("SendBytes: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("round trip = %q, want %q", got, payload)
	}
}
