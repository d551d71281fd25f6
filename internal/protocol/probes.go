package protocol

import (
	"bytes"
	"strings"

	"github.com/nao1215/portcat/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage groups probes that target one family of protocols.
type Stage string

// Stages in the order they run.
const (
	StageBanner   Stage = "banner"
	StageHTTP     Stage = "http"
	StageDatabase Stage = "database"
	StageMail     Stage = "mail"
)

// Matcher inspects a reply and returns the label it identifies, if any.
type Matcher func(reply []byte) (model.ServiceLabel, bool)

// Probe is one entry of the fingerprint table.
// A probe optionally writes a payload, reads one reply of at most ReadSize
// bytes and hands it to Match. Probes are independent: a probe that fails
// to write or read does not stop the next one.
//
// Design decision: Probes are data in an ordered table rather than one
// scanner type per protocol because:
//  1. The order is part of the behavior: the passive banner runs first so
//     that talkative services are never sent foreign bytes
//  2. HTTP runs before the database and mail probes, and vendor labels
//     depend on the GET reply being seen before anything else is written
//  3. Each matcher can be tested on raw bytes without a connection
//
// Reordering the table changes which label a service receives.
type Probe struct {
	// Name identifies the probe in logs.
	Name string

	// Stage is the family the probe belongs to.
	Stage Stage

	// Payload is written before reading. A nil payload makes the probe passive.
	Payload []byte

	// ReadSize is the maximum number of reply bytes inspected.
	ReadSize int

	// Match classifies the reply.
	Match Matcher
}

// Probe payloads. These are minimal protocol fragments, not full handshakes,
// and are kept byte-for-byte stable.
var (
	httpGetPayload     = []byte("GET / HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n")
	httpOptionsPayload = []byte("OPTIONS / HTTP/1.1\r\nHost: localhost\r\nConnection: close\r\n\r\n")

	mysqlPayload = []byte{0x00}

	// Length 8, protocol version 1234.5679 (SSLRequest code).
	postgresPayload = []byte{0x00, 0x00, 0x00, 0x08, 0x04, 0xd2, 0x16, 0x2f}

	redisPayload = []byte("*1\r\n$4\r\nPING\r\n")

	// Legacy OP_QUERY {ismaster: 1} against admin.$cmd.
	mongoPayload = []byte{
		0x3a, 0x00, 0x00, 0x00, // message length
		0x01, 0x00, 0x00, 0x00, // request id
		0x00, 0x00, 0x00, 0x00, // response to
		0xd4, 0x07, 0x00, 0x00, // opcode 2004 (OP_QUERY)
		0x00, 0x00, 0x00, 0x00, // flags
		0x61, 0x64, 0x6d, 0x69, 0x6e, 0x2e, 0x24, 0x63, 0x6d, 0x64, 0x00, // "admin.$cmd"
		0x00, 0x00, 0x00, 0x00, // number to skip
		0x01, 0x00, 0x00, 0x00, // number to return
		0x13, 0x00, 0x00, 0x00, // document length
		0x10, 0x69, 0x73, 0x6d, 0x61, 0x73, 0x74, 0x65, 0x72, 0x00, 0x01, 0x00, 0x00, 0x00, // int32 "ismaster": 1
		0x00, // document terminator
	}

	smtpPayload = []byte("EHLO localhost\r\n")
	pop3Payload = []byte("USER test\r\n")
	imapPayload = []byte("A001 CAPABILITY\r\n")
)

// DefaultProbes returns the standard fingerprint table in evaluation order.
// The returned slice is a fresh copy and may be modified by the caller.
func DefaultProbes() []Probe {
	return []Probe{
		{Name: "banner", Stage: StageBanner, ReadSize: 1024, Match: matchBanner},
		{Name: "http-get", Stage: StageHTTP, Payload: httpGetPayload, ReadSize: 1024, Match: matchHTTP},
		{Name: "http-options", Stage: StageHTTP, Payload: httpOptionsPayload, ReadSize: 1024, Match: matchHTTP},
		{Name: "mysql", Stage: StageDatabase, Payload: mysqlPayload, ReadSize: 256, Match: matchMySQL},
		{Name: "postgresql", Stage: StageDatabase, Payload: postgresPayload, ReadSize: 256, Match: matchPostgreSQL},
		{Name: "redis", Stage: StageDatabase, Payload: redisPayload, ReadSize: 64, Match: matchRedis},
		{Name: "mongodb", Stage: StageDatabase, Payload: mongoPayload, ReadSize: 256, Match: matchMongoDB},
		{Name: "smtp-ehlo", Stage: StageMail, Payload: smtpPayload, ReadSize: 512, Match: matchSMTP},
		{Name: "pop3-user", Stage: StageMail, Payload: pop3Payload, ReadSize: 256, Match: matchPOP3},
		{Name: "imap-capability", Stage: StageMail, Payload: imapPayload, ReadSize: 512, Match: matchIMAP},
	}
}

// decode converts a reply to text, replacing invalid UTF-8 sequences.
func decode(reply []byte) string {
	return strings.ToValidUTF8(string(reply), "�")
}

// matchBanner classifies an unsolicited greeting. Checks run in priority order.
func matchBanner(reply []byte) (model.ServiceLabel, bool) {
	banner := cases.Lower(language.Und).String(decode(reply))

	switch {
	case strings.Contains(banner, "ssh-"):
		return model.ServiceSSH, true
	case strings.Contains(banner, "220") && strings.Contains(banner, "ftp"):
		return model.ServiceFTP, true
	case strings.Contains(banner, "220") &&
		(strings.Contains(banner, "smtp") || strings.Contains(banner, "mail")):
		return model.ServiceSMTP, true
	case strings.Contains(banner, "* ok") && strings.Contains(banner, "imap"):
		return model.ServiceIMAP, true
	case strings.Contains(banner, "+ok") && strings.Contains(banner, "pop"):
		return model.ServicePOP3, true
	case strings.Contains(banner, "telnet") || strings.Contains(banner, "login:"):
		return model.ServiceTelnet, true
	default:
		return "", false
	}
}

// httpVendors maps a lowercase Server header prefix to its label, in priority order.
var httpVendors = []struct {
	header string
	label  model.ServiceLabel
}{
	{"server: nginx", model.ServiceHTTPNginx},
	{"server: apache", model.ServiceHTTPApache},
	{"server: microsoft-iis", model.ServiceHTTPIIS},
	{"server: caddy", model.ServiceHTTPCaddy},
}

func matchHTTP(reply []byte) (model.ServiceLabel, bool) {
	response := decode(reply)

	if strings.HasPrefix(response, "HTTP/") {
		lower := strings.ToLower(response)
		for _, v := range httpVendors {
			if strings.Contains(lower, v.header) {
				return v.label, true
			}
		}
		return model.ServiceHTTP, true
	}
	if strings.Contains(response, "400 Bad Request") || strings.Contains(response, "HTTP") {
		return model.ServiceHTTP, true
	}
	return "", false
}

// matchMySQL accepts a greeting whose fifth byte is protocol version 10.
func matchMySQL(reply []byte) (model.ServiceLabel, bool) {
	if len(reply) <= 4 {
		return "", false
	}
	if bytes.Contains(reply, []byte("mysql")) || reply[4] == 10 {
		return model.ServiceMySQL, true
	}
	return "", false
}

// matchPostgreSQL accepts an AuthenticationRequest ('R') or ErrorResponse ('E').
func matchPostgreSQL(reply []byte) (model.ServiceLabel, bool) {
	if len(reply) > 0 && (reply[0] == 'R' || reply[0] == 'E') {
		return model.ServicePostgreSQL, true
	}
	return "", false
}

func matchRedis(reply []byte) (model.ServiceLabel, bool) {
	response := decode(reply)
	if strings.Contains(response, "+PONG") || strings.Contains(response, "-NOAUTH") {
		return model.ServiceRedis, true
	}
	return "", false
}

// matchMongoDB requires at least a full 16-byte message header before looking at the body.
func matchMongoDB(reply []byte) (model.ServiceLabel, bool) {
	if len(reply) <= 16 {
		return "", false
	}
	response := decode(reply)
	if strings.Contains(response, "ismaster") || strings.Contains(response, "mongodb") {
		return model.ServiceMongoDB, true
	}
	return "", false
}

func matchSMTP(reply []byte) (model.ServiceLabel, bool) {
	response := decode(reply)
	if strings.Contains(response, "250") &&
		(strings.Contains(response, "smtp") || strings.Contains(response, "mail")) {
		return model.ServiceSMTP, true
	}
	return "", false
}

func matchPOP3(reply []byte) (model.ServiceLabel, bool) {
	response := decode(reply)
	if strings.HasPrefix(response, "+OK") || strings.HasPrefix(response, "-ERR") {
		return model.ServicePOP3, true
	}
	return "", false
}

func matchIMAP(reply []byte) (model.ServiceLabel, bool) {
	response := decode(reply)
	if strings.Contains(response, "CAPABILITY") || strings.Contains(response, "IMAP4") {
		return model.ServiceIMAP, true
	}
	return "", false
}
