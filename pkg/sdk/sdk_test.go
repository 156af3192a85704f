package sdk_test

import (
	"fmt"
	"net"
	"os"
	"testing"

	"github.com/rosterdev/roster-store/internal/engine"
	"github.com/rosterdev/roster-store/internal/server"
	"github.com/rosterdev/roster-store/internal/store"
	"github.com/rosterdev/roster-store/pkg/schema"
	"github.com/rosterdev/roster-store/pkg/sdk"
)

func startTestServer(t *testing.T) (*store.Roster, string, func()) {
	t.Helper()

	roster := store.New(engine.NewMemStore(nil, nil))
	router := server.NewRouter(roster)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	port := fmt.Sprintf("%d", listener.Addr().(*net.TCPAddr).Port)

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go router.HandleConnection(conn)
		}
	}()

	return roster, "127.0.0.1:" + port, func() { listener.Close() }
}

func TestClient_Integration(t *testing.T) {
	roster, addr, stop := startTestServer(t)
	defer stop()

	err := roster.SaveStudents([]schema.StudentRecord{
		{ID: "id-1", Fields: map[string]schema.FieldValue{
			"name":   schema.Value("Alice"),
			"course": schema.Value("CS"),
		}},
		{ID: "id-2", Fields: map[string]schema.FieldValue{
			"name":   schema.Value("Bob"),
			"course": schema.Value("CS"),
		}},
	})
	if err != nil {
		t.Fatalf("SaveStudents: %v", err)
	}
	roster.SetCredential("alice@example.com", "secret")
	roster.SetSession("alice@example.com")

	os.Setenv("ROSTER_DISABLE_TLS", "true")
	defer os.Unsetenv("ROSTER_DISABLE_TLS")

	client, err := sdk.Connect(addr)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer client.Close()

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	students, err := client.ListStudents()
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if len(students) != 2 || students[0].Field("name") != "Alice" {
		t.Errorf("Unexpected students: %+v", students)
	}

	summary, err := client.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Total != 2 || summary.Courses["CS"] != 2 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	cred, err := client.Credential("alice@example.com")
	if err != nil || cred.Password != "secret" {
		t.Errorf("Credential failed: %+v, %v", cred, err)
	}

	email, err := client.Session()
	if err != nil || email != "alice@example.com" {
		t.Errorf("Session failed: %q, %v", email, err)
	}

	if err := client.ClearSession(); err != nil {
		t.Fatalf("ClearSession failed: %v", err)
	}
	if _, err := client.Session(); err == nil {
		t.Error("Expected error after ClearSession")
	}

	if err := client.DeleteStudent(0); err != nil {
		t.Fatalf("DeleteStudent failed: %v", err)
	}
	students, _ = client.ListStudents()
	if len(students) != 1 || students[0].Field("name") != "Bob" {
		t.Errorf("Unexpected roster after delete: %+v", students)
	}

	if err := client.DeleteStudent(9); err == nil {
		t.Error("Expected error for out-of-range delete")
	}
}

func TestEmbeddedMode(t *testing.T) {
	os.Unsetenv("ROSTER_STORE_ADDR")

	rs, err := sdk.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer rs.Close()

	if err := rs.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	students, err := rs.ListStudents()
	if err != nil || len(students) != 0 {
		t.Errorf("Expected empty roster, got %v, %v", students, err)
	}

	if _, err := rs.Session(); err != sdk.ErrNoSession {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}

	if cred, err := rs.Credential("nobody@example.com"); err != nil || cred != nil {
		t.Errorf("Expected no credential, got %+v, %v", cred, err)
	}
}

func TestClient_RetryLogic(t *testing.T) {
	_, addr, stop := startTestServer(t)

	os.Setenv("ROSTER_DISABLE_TLS", "true")
	defer os.Unsetenv("ROSTER_DISABLE_TLS")

	client, err := sdk.Connect(addr)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	// Close the listener so no more connections can be accepted
	stop()

	// The existing connection might still serve one command; after that the
	// client retries, fails to reconnect and returns an error. It must not panic.
	client.Ping()
	client.ListStudents()
}
