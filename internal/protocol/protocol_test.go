package protocol

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/portcat/internal/model"
)

// scriptedConn is an in-memory net.Conn. Reads return buffered bytes or a
// deadline error when nothing is buffered. Writes are recorded and may
// enqueue a reply.
type scriptedConn struct {
	mu        sync.Mutex
	pending   []byte
	writes    [][]byte
	respond   func(payload []byte) []byte
	failWrite bool
}

func newScriptedConn(banner string, respond func([]byte) []byte) *scriptedConn {
	return &scriptedConn{pending: []byte(banner), respond: respond}
}

func (c *scriptedConn) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return 0, os.ErrDeadlineExceeded
	}
	n := copy(b, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

func (c *scriptedConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWrite {
		return 0, io.ErrClosedPipe
	}
	c.writes = append(c.writes, append([]byte(nil), b...))
	if c.respond != nil {
		c.pending = append(c.pending, c.respond(b)...)
	}
	return len(b), nil
}

func (c *scriptedConn) writeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *scriptedConn) Close() error                     { return nil }
func (c *scriptedConn) LocalAddr() net.Addr              { return &net.TCPAddr{} }
func (c *scriptedConn) RemoteAddr() net.Addr             { return &net.TCPAddr{} }
func (c *scriptedConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptedConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptedConn) SetWriteDeadline(time.Time) error { return nil }

// replyTo returns a responder that answers only the given payload.
func replyTo(payload []byte, reply string) func([]byte) []byte {
	return func(b []byte) []byte {
		if bytes.Equal(b, payload) {
			return []byte(reply)
		}
		return nil
	}
}

func TestDetectPassiveBanner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		banner string
		want   model.ServiceLabel
	}{
		{"smtp greeting", "220 mail.example.com ESMTP ready\r\n", model.ServiceSMTP},
		{"ssh version", "SSH-2.0-OpenSSH_9.6p1 Ubuntu-3ubuntu13\r\n", model.ServiceSSH},
		{"ftp greeting", "220 ProFTPD Server (Debian FTP) ready\r\n", model.ServiceFTP},
		{"imap greeting", "* OK [CAPABILITY IMAP4rev1] Dovecot ready.\r\n", model.ServiceIMAP},
		{"pop3 greeting", "+OK Dovecot POP3 ready.\r\n", model.ServicePOP3},
		{"telnet login prompt", "Ubuntu 24.04 LTS\r\nlogin: ", model.ServiceTelnet},
		{"ftp wins over smtp", "220 ftp and mail gateway\r\n", model.ServiceFTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := newScriptedConn(tt.banner, nil)
			got := NewFingerprinter().Detect(conn, 1)

			if got.Label != tt.want {
				t.Errorf("Label = %q, want %q", got.Label, tt.want)
			}
			if got.Stage != StageBanner {
				t.Errorf("Stage = %q, want %q", got.Stage, StageBanner)
			}
			if n := conn.writeCount(); n != 0 {
				t.Errorf("passive match issued %d writes, want 0", n)
			}
		})
	}
}

func TestDetectHTTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reply     string
		want      model.ServiceLabel
		wantProbe string
	}{
		{"nginx", "HTTP/1.1 200 OK\r\nServer: nginx\r\n\r\n", model.ServiceHTTPNginx, "http-get"},
		{"apache", "HTTP/1.1 200 OK\r\nServer: Apache\r\n\r\n", model.ServiceHTTPApache, "http-get"},
		{"iis", "HTTP/1.1 200 OK\r\nServer: Microsoft-IIS/10.0\r\n\r\n", model.ServiceHTTPIIS, "http-get"},
		{"caddy", "HTTP/2.0 200 OK\r\nSERVER: Caddy\r\n\r\n", model.ServiceHTTPCaddy, "http-get"},
		{"unrecognized server", "HTTP/1.1 200 OK\r\nServer: lighttpd\r\n\r\n", model.ServiceHTTP, "http-get"},
		{"no server header", "HTTP/1.0 404 Not Found\r\n\r\n", model.ServiceHTTP, "http-get"},
		{"bad request body", "<html><h1>400 Bad Request</h1></html>", model.ServiceHTTP, "http-get"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := newScriptedConn("", replyTo(httpGetPayload, tt.reply))
			got := NewFingerprinter().Detect(conn, 80)

			if got.Label != tt.want {
				t.Errorf("Label = %q, want %q", got.Label, tt.want)
			}
			if got.Probe != tt.wantProbe {
				t.Errorf("Probe = %q, want %q", got.Probe, tt.wantProbe)
			}
			if n := conn.writeCount(); n != 1 {
				t.Errorf("writes = %d, want 1", n)
			}
		})
	}
}

func TestDetectHTTPOptionsFallback(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn("", replyTo(httpOptionsPayload, "HTTP/1.1 204 No Content\r\nServer: nginx/1.25.3\r\n\r\n"))
	got := NewFingerprinter().Detect(conn, 8080)

	if got.Label != model.ServiceHTTPNginx {
		t.Errorf("Label = %q, want %q", got.Label, model.ServiceHTTPNginx)
	}
	if got.Probe != "http-options" {
		t.Errorf("Probe = %q, want http-options", got.Probe)
	}
	if n := conn.writeCount(); n != 2 {
		t.Errorf("writes = %d, want 2", n)
	}
}

func TestDetectDatabase(t *testing.T) {
	t.Parallel()

	mysqlHandshake := string([]byte{0x4a, 0x00, 0x00, 0x00, 0x0a, '8', '.', '0', '.', '3', '6', 0x00})
	mongoReply := string(make([]byte, 16)) + "\x08ismaster\x00\x01\x10maxBsonObjectSize"

	tests := []struct {
		name       string
		payload    []byte
		reply      string
		want       model.ServiceLabel
		wantWrites int
	}{
		{"mysql handshake", mysqlPayload, mysqlHandshake, model.ServiceMySQL, 3},
		{"mysql text", mysqlPayload, "\x00\x00\x00\x00 mysql_native_password", model.ServiceMySQL, 3},
		{"postgresql error", postgresPayload, "E\x00\x00\x00\x54SFATAL", model.ServicePostgreSQL, 4},
		{"postgresql auth", postgresPayload, "R\x00\x00\x00\x08\x00\x00\x00\x05", model.ServicePostgreSQL, 4},
		{"redis pong", redisPayload, "+PONG\r\n", model.ServiceRedis, 5},
		{"redis noauth", redisPayload, "-NOAUTH Authentication required.\r\n", model.ServiceRedis, 5},
		{"mongodb", mongoPayload, mongoReply, model.ServiceMongoDB, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := newScriptedConn("", replyTo(tt.payload, tt.reply))
			got := NewFingerprinter().Detect(conn, 1)

			if got.Label != tt.want {
				t.Errorf("Label = %q, want %q", got.Label, tt.want)
			}
			if got.Stage != StageDatabase {
				t.Errorf("Stage = %q, want %q", got.Stage, StageDatabase)
			}
			if n := conn.writeCount(); n != tt.wantWrites {
				t.Errorf("writes = %d, want %d", n, tt.wantWrites)
			}
		})
	}
}

func TestDetectMail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    []byte
		reply      string
		want       model.ServiceLabel
		wantWrites int
	}{
		{"smtp ehlo", smtpPayload, "250-mail.example.com\r\n250 SIZE 10240000\r\n", model.ServiceSMTP, 7},
		{"pop3 user", pop3Payload, "-ERR unknown command\r\n", model.ServicePOP3, 8},
		{"imap capability", imapPayload, "* CAPABILITY IMAP4rev1 IDLE\r\nA001 OK\r\n", model.ServiceIMAP, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn := newScriptedConn("", replyTo(tt.payload, tt.reply))
			got := NewFingerprinter().Detect(conn, 1)

			if got.Label != tt.want {
				t.Errorf("Label = %q, want %q", got.Label, tt.want)
			}
			if got.Stage != StageMail {
				t.Errorf("Stage = %q, want %q", got.Stage, StageMail)
			}
			if n := conn.writeCount(); n != tt.wantWrites {
				t.Errorf("writes = %d, want %d", n, tt.wantWrites)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	t.Parallel()

	conn := newScriptedConn("", nil)
	got := NewFingerprinter().Detect(conn, 9999)

	if got.Label != model.ServiceUnknown {
		t.Errorf("Label = %q, want %q", got.Label, model.ServiceUnknown)
	}
	if got.Matched() {
		t.Errorf("Matched() = true, want false")
	}
	if n := conn.writeCount(); n != 9 {
		t.Errorf("writes = %d, want 9", n)
	}
}

func TestIdentifyLogsUnmatchedService(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	got := NewFingerprinter(WithLogger(logger)).Identify(newScriptedConn("", nil), 4444)
	if got != model.ServiceUnknown {
		t.Errorf("Identify() = %q, want %q", got, model.ServiceUnknown)
	}
	if !bytes.Contains(logs.Bytes(), []byte("no probe matched")) || !bytes.Contains(logs.Bytes(), []byte("port=4444")) {
		t.Errorf("expected unmatched service to be logged, got:\n%s", logs.String())
	}

	logs.Reset()
	_ = NewFingerprinter(WithLogger(logger)).Identify(newScriptedConn("SSH-2.0-OpenSSH_9.6\r\n", nil), 22)
	if bytes.Contains(logs.Bytes(), []byte("no probe matched")) {
		t.Errorf("matched service logged as unmatched:\n%s", logs.String())
	}
}

func TestDetectWriteFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	conn := newScriptedConn("", nil)
	conn.failWrite = true

	got := NewFingerprinter(WithLogger(logger)).Identify(conn, 25)
	if got != model.ServiceUnknown {
		t.Errorf("Identify() = %q, want %q", got, model.ServiceUnknown)
	}
	if !bytes.Contains(logs.Bytes(), []byte("probe did not complete")) {
		t.Errorf("expected probe failure to be logged, got %q", logs.String())
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	t.Parallel()

	stream := func() *scriptedConn {
		return newScriptedConn("", replyTo(redisPayload, "+PONG\r\n"))
	}

	fp := NewFingerprinter()
	first := fp.Identify(stream(), 6379)
	second := fp.Identify(stream(), 6379)

	if first != second {
		t.Errorf("labels differ: %q then %q", first, second)
	}
	if first != model.ServiceRedis {
		t.Errorf("Identify() = %q, want %q", first, model.ServiceRedis)
	}
}

func TestDetectOverTCP(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
		_, _ = io.Copy(io.Discard, conn)
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	got := NewFingerprinter(WithIOTimeout(time.Second)).Identify(conn, 22)
	if got != model.ServiceSSH {
		t.Errorf("Identify() = %q, want %q", got, model.ServiceSSH)
	}
}

func TestDefaultProbesOrder(t *testing.T) {
	t.Parallel()

	var names []string
	for _, p := range DefaultProbes() {
		names = append(names, p.Name)
	}

	want := []string{
		"banner",
		"http-get", "http-options",
		"mysql", "postgresql", "redis", "mongodb",
		"smtp-ehlo", "pop3-user", "imap-capability",
	}
	if !slices.Equal(names, want) {
		t.Errorf("probe order = %v, want %v", names, want)
	}
}

func TestProbePayloads(t *testing.T) {
	t.Parallel()

	if len(mongoPayload) != 58 {
		t.Errorf("mongo payload length = %d, want 58", len(mongoPayload))
	}
	if int(mongoPayload[0]) != len(mongoPayload) {
		t.Errorf("mongo message length field = %d, want %d", mongoPayload[0], len(mongoPayload))
	}
	if !bytes.Equal(postgresPayload, []byte{0x00, 0x00, 0x00, 0x08, 0x04, 0xd2, 0x16, 0x2f}) {
		t.Errorf("postgres payload = % x", postgresPayload)
	}
	if string(redisPayload) != "*1\r\n$4\r\nPING\r\n" {
		t.Errorf("redis payload = %q", redisPayload)
	}
}

func TestMatchGuards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		match Matcher
		reply []byte
	}{
		{"mysql needs five bytes", matchMySQL, []byte{0x00, 0x00, 0x00, 0x0a}},
		{"mongodb needs a full header", matchMongoDB, []byte("0123456789ismaster")[:16]},
		{"postgresql empty reply", matchPostgreSQL, nil},
		{"pop3 prefix only", matchPOP3, []byte("hello +OK")},
		{"smtp needs a 250 reply", matchSMTP, []byte("554 mail rejected")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if label, ok := tt.match(tt.reply); ok {
				t.Errorf("match(%q) = %q, want no match", tt.reply, label)
			}
		})
	}
}

func TestProbeIOError(t *testing.T) {
	t.Parallel()

	err := error(&ProbeIOError{Probe: "redis", Op: "read", Err: os.ErrDeadlineExceeded})

	if !errors.Is(err, ErrProbeIO) {
		t.Errorf("errors.Is(err, ErrProbeIO) = false")
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Errorf("errors.Is(err, os.ErrDeadlineExceeded) = false")
	}
	if got, want := err.Error(), "probe redis: read failed: i/o timeout"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
