// Package server implements the line-oriented TCP admin protocol.
// Each request is a single line; responses are "OK [json]", "ERR <msg>"
// or "PONG".
package server

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rosterdev/roster-store/internal/dashboard"
	"github.com/rosterdev/roster-store/internal/store"
)

type Router struct {
	roster   *store.Roster
	cert     *tls.Certificate
	mu       sync.Mutex
	listener net.Listener
}

func NewRouter(r *store.Roster) *Router {
	return &Router{roster: r}
}

// SetCertificate sets the TLS certificate for the router
func (r *Router) SetCertificate(cert tls.Certificate) {
	r.cert = &cert
}

// Listen starts the TCP server. Pass "0" to bind an ephemeral port.
func (r *Router) Listen(port string) error {
	var listener net.Listener
	var err error

	if r.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*r.cert}}
		listener, err = tls.Listen("tcp", ":"+port, config)
	} else {
		listener, err = net.Listen("tcp", ":"+port)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.listener = listener
	r.mu.Unlock()

	semaphore := make(chan struct{}, 100) // Max 100 concurrent connections

	for {
		conn, err := listener.Accept()
		if err != nil {
			r.mu.Lock()
			closed := r.listener == nil
			r.mu.Unlock()
			if closed {
				return nil
			}
			continue
		}

		conn.SetDeadline(time.Now().Add(5 * time.Minute))

		go func(c net.Conn) {
			semaphore <- struct{}{}
			defer func() {
				<-semaphore
				c.Close()
			}()
			r.HandleConnection(c)
		}(conn)
	}
}

// Stop closes the listener. In-flight connections finish on their own.
func (r *Router) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener != nil {
		l := r.listener
		r.listener = nil
		l.Close()
	}
}

// HandleConnection serves one client until QUIT, EOF or timeout.
func (r *Router) HandleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)

	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) < 1 {
			continue
		}

		switch strings.ToUpper(parts[0]) {
		case "LIST":
			writeJSON(conn, r.roster.ListStudents())

		case "COUNT":
			fmt.Fprintln(conn, "OK", len(r.roster.ListStudents()))

		case "DEL":
			if len(parts) < 2 {
				fmt.Fprintln(conn, "ERR missing index")
				continue
			}
			index, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Fprintln(conn, "ERR index must be an integer")
				continue
			}
			if err := r.roster.DeleteStudent(index); err != nil {
				fmt.Fprintln(conn, "ERR", err)
			} else {
				fmt.Fprintln(conn, "OK")
			}

		case "CRED":
			if len(parts) < 2 {
				fmt.Fprintln(conn, "ERR missing email")
				continue
			}
			cred, err := r.roster.GetCredential(parts[1])
			switch {
			case err != nil:
				fmt.Fprintln(conn, "ERR", err)
			case cred == nil:
				fmt.Fprintln(conn, "ERR no credential for", parts[1])
			default:
				writeJSON(conn, cred)
			}

		case "SESSION":
			email, ok := r.roster.GetSession()
			if !ok {
				fmt.Fprintln(conn, "ERR no active session")
			} else {
				writeJSON(conn, email)
			}

		case "CLEAR_SESSION":
			if err := r.roster.ClearSession(); err != nil {
				fmt.Fprintln(conn, "ERR", err)
			} else {
				fmt.Fprintln(conn, "OK")
			}

		case "SUMMARY":
			writeJSON(conn, dashboard.Summarize(r.roster.ListStudents()))

		case "PING":
			fmt.Fprintln(conn, "PONG")

		case "QUIT":
			return

		default:
			fmt.Fprintln(conn, "ERR unknown command", parts[0])
		}
	}
}

func writeJSON(conn net.Conn, v any) {
	res, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintln(conn, "ERR internal error")
		return
	}
	fmt.Fprintln(conn, "OK", string(res))
}
