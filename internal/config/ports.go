package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/portcat/internal/model"
)

// ParseRange parses a "<start>-<end>" range. Both bounds are inclusive.
// Missing or non-numeric bounds and start > end yield a *model.RangeFormatError.
func ParseRange(s string) (uint16, uint16, error) {
	startText, endText, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, &model.RangeFormatError{Range: s, Reason: "expected <start>-<end>"}
	}

	start, err := parseBound(startText)
	if err != nil {
		return 0, 0, &model.RangeFormatError{Range: s, Reason: "start: " + err.Error()}
	}
	end, err := parseBound(endText)
	if err != nil {
		return 0, 0, &model.RangeFormatError{Range: s, Reason: "end: " + err.Error()}
	}

	if start > end {
		return 0, 0, &model.RangeFormatError{Range: s, Reason: "start must be <= end"}
	}
	return start, end, nil
}

func parseBound(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty bound")
	}
	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a port number", s)
	}
	return uint16(n), nil
}

// ParsePorts parses a comma separated port list such as "80,443,8000-8010".
// Ports keep the order they were given in; repeated ports are dropped.
func ParsePorts(s string) ([]uint16, error) {
	var ports []uint16
	seen := make(map[uint16]struct{})
	add := func(p uint16) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		ports = append(ports, p)
	}

	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if strings.Contains(part, "-") {
			start, end, err := ParseRange(part)
			if err != nil {
				return nil, err
			}
			if start == 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPort, part)
			}
			for p := int(start); p <= int(end); p++ {
				add(uint16(p))
			}
			continue
		}

		n, err := strconv.ParseUint(part, 10, 16)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPort, part)
		}
		add(uint16(n))
	}

	if len(ports) == 0 {
		return nil, ErrInvalidPortList
	}
	return ports, nil
}
