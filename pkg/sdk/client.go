// Package sdk provides the client-side library for the roster store.
// It supports both remote connections via TCP/TLS and local embedded mode.
package sdk

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rosterdev/roster-store/internal/dashboard"
	"github.com/rosterdev/roster-store/pkg/schema"
)

// Client is a remote client for the roster store daemon.
// It implements the RosterStore interface.
type Client struct {
	addr   string
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex // Protects concurrent access to the connection
}

// Connect establishes a TLS-encrypted connection to a remote daemon.
// If ROSTER_DISABLE_TLS is set to "true", it falls back to plain TCP.
func Connect(addr string) (*Client, error) {
	c := &Client{addr: addr}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	var conn net.Conn
	var err error

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}

	if os.Getenv("ROSTER_DISABLE_TLS") == "true" {
		conn, err = dialer.Dial("tcp", c.addr)
	} else {
		config := &tls.Config{
			InsecureSkipVerify: true, // Self-signed certs for internal traffic
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", c.addr, config)
	}

	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Internal helper for TCP communication
func (c *Client) sendAndReceive(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	var resp string

	// Try up to 3 times with exponential backoff
	for i := 0; i < 3; i++ {
		if c.conn == nil {
			if reconnectErr := c.reconnect(); reconnectErr != nil {
				err = fmt.Errorf("reconnect failed: %w", reconnectErr)
				time.Sleep(time.Duration(i*100) * time.Millisecond)
				continue
			}
		}

		c.conn.SetDeadline(time.Now().Add(30 * time.Second))

		_, err = fmt.Fprint(c.conn, cmd+"\n")
		if err == nil {
			resp, err = c.reader.ReadString('\n')
			if err == nil {
				resp = strings.TrimSpace(resp)
				if strings.HasPrefix(resp, "ERR") {
					return "", fmt.Errorf("%s", strings.TrimPrefix(resp, "ERR "))
				}
				return resp, nil
			}
		}

		fmt.Fprintf(os.Stderr, "[Roster SDK] Attempt %d failed: %v. Reconnecting...\n", i+1, err)

		if closeErr := c.reconnect(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "[Roster SDK] Reconnect attempt failed: %v\n", closeErr)
		}

		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}

	return "", fmt.Errorf("failed after 3 attempts. last error: %v", err)
}

func (c *Client) ListStudents() ([]schema.StudentRecord, error) {
	resp, err := c.sendAndReceive("LIST")
	if err != nil {
		return nil, err
	}
	var students []schema.StudentRecord
	err = json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &students)
	return students, err
}

func (c *Client) Summary() (dashboard.Summary, error) {
	var summary dashboard.Summary
	resp, err := c.sendAndReceive("SUMMARY")
	if err != nil {
		return summary, err
	}
	err = json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &summary)
	return summary, err
}

func (c *Client) DeleteStudent(index int) error {
	_, err := c.sendAndReceive(fmt.Sprintf("DEL %d", index))
	return err
}

func (c *Client) Credential(email string) (*schema.CredentialEntry, error) {
	resp, err := c.sendAndReceive(fmt.Sprintf("CRED %s", email))
	if err != nil {
		return nil, err
	}
	var cred schema.CredentialEntry
	if err := json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

func (c *Client) Session() (string, error) {
	resp, err := c.sendAndReceive("SESSION")
	if err != nil {
		return "", err
	}
	var email string
	err = json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &email)
	return email, err
}

func (c *Client) ClearSession() error {
	_, err := c.sendAndReceive("CLEAR_SESSION")
	return err
}

func (c *Client) Ping() error {
	resp, err := c.sendAndReceive("PING")
	if err != nil {
		return err
	}
	if resp != "PONG" {
		return fmt.Errorf("unexpected ping response %q", resp)
	}
	return nil
}

func (c *Client) Close() error {
	fmt.Fprintln(c.conn, "QUIT")
	return c.conn.Close()
}
