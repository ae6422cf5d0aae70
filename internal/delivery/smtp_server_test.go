// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package delivery

import (
	"encoding/base64"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// receivedMail is one message accepted by fakeSMTP.
type receivedMail struct {
	From     string
	To       []string
	AuthUser string
	AuthPass string
	Data     []byte
}

// fakeSMTP is a minimal SMTP server for exercising EmailChannel end to end.
type fakeSMTP struct {
	ln net.Listener

	rejectAuth bool
	rejectRcpt bool
	silent     bool

	mu       sync.Mutex
	messages []receivedMail
	conns    []net.Conn

	wg sync.WaitGroup
}

type fakeOption func(*fakeSMTP)

func withRejectAuth() fakeOption { return func(s *fakeSMTP) { s.rejectAuth = true } }
func withRejectRcpt() fakeOption { return func(s *fakeSMTP) { s.rejectRcpt = true } }

// withSilent accepts connections but never sends the greeting.
func withSilent() fakeOption { return func(s *fakeSMTP) { s.silent = true } }

func startFakeSMTP(t *testing.T, opts ...fakeOption) *fakeSMTP {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &fakeSMTP{ln: ln}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		_ = ln.Close()
		s.mu.Lock()
		for _, c := range s.conns {
			_ = c.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return s
}

func (s *fakeSMTP) port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// config returns an SMTPConfig pointing at the server.
func (s *fakeSMTP) config() SMTPConfig {
	return SMTPConfig{
		Host:     "127.0.0.1",
		Port:     s.port(),
		From:     "reports@fundwise.test",
		FromName: "Fundwise Reports",
		Timeout:  5 * time.Second,
	}
}

func (s *fakeSMTP) received() []receivedMail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]receivedMail, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *fakeSMTP) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handle(conn)
	}
}

func (s *fakeSMTP) handle(conn net.Conn) {
	defer s.wg.Done()
	defer func() { _ = conn.Close() }()

	if s.silent {
		_, _ = io.Copy(io.Discard, conn)
		return
	}

	tp := textproto.NewConn(conn)
	reply := func(format string, args ...any) bool {
		return tp.PrintfLine(format, args...) == nil
	}

	if !reply("220 localhost ESMTP fake") {
		return
	}

	var cur receivedMail
	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "EHLO"):
			reply("250-localhost")
			reply("250-8BITMIME")
			reply("250 AUTH PLAIN")
		case strings.HasPrefix(upper, "HELO"):
			reply("250 localhost")
		case strings.HasPrefix(upper, "AUTH PLAIN"):
			if s.rejectAuth {
				reply("535 5.7.8 authentication credentials invalid")
				continue
			}
			fields := strings.Fields(line)
			if len(fields) == 3 {
				if raw, err := base64.StdEncoding.DecodeString(fields[2]); err == nil {
					parts := strings.Split(string(raw), "\x00")
					if len(parts) == 3 {
						cur.AuthUser, cur.AuthPass = parts[1], parts[2]
					}
				}
			}
			reply("235 2.7.0 authentication successful")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			cur.From = angleAddr(line)
			reply("250 2.1.0 ok")
		case strings.HasPrefix(upper, "RCPT TO:"):
			if s.rejectRcpt {
				reply("550 5.1.1 mailbox unavailable")
				continue
			}
			cur.To = append(cur.To, angleAddr(line))
			reply("250 2.1.5 ok")
		case upper == "DATA":
			reply("354 end data with <CR><LF>.<CR><LF>")
			data, err := tp.ReadDotBytes()
			if err != nil {
				return
			}
			cur.Data = data
			s.mu.Lock()
			s.messages = append(s.messages, cur)
			s.mu.Unlock()
			cur = receivedMail{}
			reply("250 2.0.0 queued as " + strconv.Itoa(len(data)))
		case upper == "RSET":
			cur = receivedMail{}
			reply("250 ok")
		case upper == "NOOP":
			reply("250 ok")
		case upper == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 command not implemented")
		}
	}
}

func angleAddr(line string) string {
	start := strings.Index(line, "<")
	end := strings.Index(line, ">")
	if start < 0 || end <= start {
		return ""
	}
	return line[start+1 : end]
}

// closedPort returns a local port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}
