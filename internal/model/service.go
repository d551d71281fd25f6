package model

import "fmt"

// ServiceLabel identifies the application protocol detected on an open port.
// The zero value means no service was identified (detection disabled or not run).
type ServiceLabel string

// Service labels emitted by the fingerprinter.
// The string values are part of the output format and must stay stable.
const (
	ServiceSSH         ServiceLabel = "SSH"
	ServiceFTP         ServiceLabel = "FTP"
	ServiceSMTP        ServiceLabel = "SMTP"
	ServiceIMAP        ServiceLabel = "IMAP"
	ServicePOP3        ServiceLabel = "POP3"
	ServiceTelnet      ServiceLabel = "Telnet"
	ServiceHTTP        ServiceLabel = "HTTP"
	ServiceHTTPNginx   ServiceLabel = "HTTP (Nginx)"
	ServiceHTTPApache  ServiceLabel = "HTTP (Apache)"
	ServiceHTTPIIS     ServiceLabel = "HTTP (IIS)"
	ServiceHTTPCaddy   ServiceLabel = "HTTP (Caddy)"
	ServiceMySQL       ServiceLabel = "MySQL"
	ServicePostgreSQL  ServiceLabel = "PostgreSQL"
	ServiceRedis       ServiceLabel = "Redis"
	ServiceMongoDB     ServiceLabel = "MongoDB"
	ServiceUnknown     ServiceLabel = "Unknown"
	serviceLabelAbsent ServiceLabel = ""
)

// ServiceLabels returns every label the fingerprinter can produce, in declaration order.
func ServiceLabels() []ServiceLabel {
	return []ServiceLabel{
		ServiceSSH, ServiceFTP, ServiceSMTP, ServiceIMAP, ServicePOP3, ServiceTelnet,
		ServiceHTTP, ServiceHTTPNginx, ServiceHTTPApache, ServiceHTTPIIS, ServiceHTTPCaddy,
		ServiceMySQL, ServicePostgreSQL, ServiceRedis, ServiceMongoDB, ServiceUnknown,
	}
}

// String returns the label text, or "-" when no label was assigned.
func (l ServiceLabel) String() string {
	if l == serviceLabelAbsent {
		return "-"
	}
	return string(l)
}

// IsSet reports whether a label was assigned.
func (l ServiceLabel) IsSet() bool {
	return l != serviceLabelAbsent
}

// IsKnown reports whether l is one of the labels returned by ServiceLabels.
func (l ServiceLabel) IsKnown() bool {
	for _, known := range ServiceLabels() {
		if l == known {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler. Only labels the
// fingerprinter can produce are accepted, so decoded reports cannot carry
// made-up services.
func (l *ServiceLabel) UnmarshalText(text []byte) error {
	label := ServiceLabel(text)
	if label != serviceLabelAbsent && !label.IsKnown() {
		return fmt.Errorf("unknown service label %q", string(text))
	}
	*l = label
	return nil
}
