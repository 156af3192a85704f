package server

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rosterdev/roster-store/internal/engine"
	"github.com/rosterdev/roster-store/internal/store"
	"github.com/rosterdev/roster-store/pkg/schema"
)

func startRouter(t *testing.T, roster *store.Roster) (*Router, string) {
	t.Helper()
	router := NewRouter(roster)

	go router.Listen("0")

	// Wait a bit for listener to be set
	var port string
	for i := 0; i < 10; i++ {
		time.Sleep(50 * time.Millisecond)
		router.mu.Lock()
		if router.listener != nil {
			port = fmt.Sprintf("%d", router.listener.Addr().(*net.TCPAddr).Port)
			router.mu.Unlock()
			break
		}
		router.mu.Unlock()
	}
	if port == "" {
		t.Fatalf("Server did not start in time")
	}
	return router, port
}

func seedRoster(t *testing.T) *store.Roster {
	t.Helper()
	roster := store.New(engine.NewMemStore(nil, nil))
	err := roster.SaveStudents([]schema.StudentRecord{
		{ID: "id-1", Fields: map[string]schema.FieldValue{
			"name":   schema.Value("Alice"),
			"course": schema.Value("CS"),
		}},
		{ID: "id-2", Fields: map[string]schema.FieldValue{
			"name":   schema.Value("Bob"),
			"course": schema.Value("EE"),
		}},
	})
	if err != nil {
		t.Fatalf("SaveStudents: %v", err)
	}
	return roster
}

func TestRouter_TCP_Commands(t *testing.T) {
	roster := seedRoster(t)
	router, port := startRouter(t, roster)
	defer router.Stop()

	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Test PING
	fmt.Fprintf(conn, "PING\n")
	line, _ := reader.ReadString('\n')
	if line != "PONG\n" {
		t.Errorf("Expected PONG, got %q", line)
	}

	// Test COUNT
	fmt.Fprintf(conn, "COUNT\n")
	line, _ = reader.ReadString('\n')
	if line != "OK 2\n" {
		t.Errorf("Expected OK 2, got %q", line)
	}

	// Test LIST
	fmt.Fprintf(conn, "LIST\n")
	line, _ = reader.ReadString('\n')
	if !strings.HasPrefix(line, "OK ") || !strings.Contains(line, "Alice") {
		t.Errorf("Expected roster JSON, got %q", line)
	}

	// Test DEL
	fmt.Fprintf(conn, "DEL 0\n")
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Errorf("Expected OK, got %q", line)
	}

	fmt.Fprintf(conn, "COUNT\n")
	line, _ = reader.ReadString('\n')
	if line != "OK 1\n" {
		t.Errorf("Expected OK 1 after delete, got %q", line)
	}

	// Test DEL out of range
	fmt.Fprintf(conn, "DEL 9\n")
	line, _ = reader.ReadString('\n')
	if len(line) < 3 || line[:3] != "ERR" {
		t.Errorf("Expected ERR, got %q", line)
	}
}

func TestRouter_SessionAndCredential(t *testing.T) {
	roster := seedRoster(t)
	roster.SetCredential("alice@example.com", "secret")
	roster.SetSession("alice@example.com")

	router, port := startRouter(t, roster)
	defer router.Stop()

	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Test SESSION
	fmt.Fprintf(conn, "SESSION\n")
	line, _ := reader.ReadString('\n')
	if line != "OK \"alice@example.com\"\n" {
		t.Errorf("Expected session email, got %q", line)
	}

	// Test CRED
	fmt.Fprintf(conn, "CRED alice@example.com\n")
	line, _ = reader.ReadString('\n')
	if !strings.HasPrefix(line, "OK ") || !strings.Contains(line, "secret") {
		t.Errorf("Expected credential JSON, got %q", line)
	}

	fmt.Fprintf(conn, "CRED nobody@example.com\n")
	line, _ = reader.ReadString('\n')
	if len(line) < 3 || line[:3] != "ERR" {
		t.Errorf("Expected ERR for unknown email, got %q", line)
	}

	// Test CLEAR_SESSION
	fmt.Fprintf(conn, "CLEAR_SESSION\n")
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Errorf("Expected OK, got %q", line)
	}

	fmt.Fprintf(conn, "SESSION\n")
	line, _ = reader.ReadString('\n')
	if len(line) < 3 || line[:3] != "ERR" {
		t.Errorf("Expected ERR after clear, got %q", line)
	}
}

func TestRouter_Summary(t *testing.T) {
	roster := seedRoster(t)
	router, port := startRouter(t, roster)
	defer router.Stop()

	conn, _ := net.Dial("tcp", "127.0.0.1:"+port)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	fmt.Fprintf(conn, "SUMMARY\n")
	line, _ := reader.ReadString('\n')
	if !strings.HasPrefix(line, "OK ") || !strings.Contains(line, "\"total\":2") {
		t.Errorf("Expected summary JSON, got %q", line)
	}
}

func TestRouter_MalformedCommands(t *testing.T) {
	roster := seedRoster(t)
	router, port := startRouter(t, roster)
	defer router.Stop()

	conn, _ := net.Dial("tcp", "127.0.0.1:"+port)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Missing argument and bad index both answer with ERR
	fmt.Fprintf(conn, "DEL\n")
	fmt.Fprintf(conn, "DEL abc\n")
	fmt.Fprintf(conn, "BOGUS\n")
	fmt.Fprintf(conn, "PING\n")

	foundPong := false
	for i := 0; i < 5; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if line == "PONG\n" {
			foundPong = true
			break
		}
		if len(line) < 3 || line[:3] != "ERR" {
			t.Errorf("Expected ERR before PONG, got %q", line)
		}
	}
	if !foundPong {
		t.Error("Did not receive PONG")
	}
}

func TestRouter_ConcurrentConnections(t *testing.T) {
	roster := seedRoster(t)
	router, port := startRouter(t, roster)
	defer router.Stop()

	conns := make([]net.Conn, 0)
	for i := 0; i < 110; i++ {
		conn, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 100*time.Millisecond)
		if err == nil {
			conns = append(conns, conn)
		}
	}

	for _, c := range conns {
		c.Close()
	}
}
