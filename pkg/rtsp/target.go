package rtsp

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
)

// DefaultPort is the well-known RTSP port
const DefaultPort = 554

// Target is the host, port and resource path of an RTSP URL
type Target struct {
	Host string
	Port int
	Path string
}

// rtsp://host[:port][/path]. Userinfo, IPv6 literals, query and fragment are not accepted.
var targetPattern = regexp.MustCompile(`^(?i:rtsp)://([^\s:/?#@\[\]]+)(?::(\d{1,5}))?(/\S*)?$`)

// ParseTarget parses an RTSP URL of the form rtsp://host[:port][/path].
// The port defaults to 554 and an empty path becomes "/".
func ParseTarget(rtspURL string) (Target, error) {
	if rtspURL == "" {
		return Target{}, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	m := targetPattern.FindStringSubmatch(rtspURL)
	if m == nil {
		return Target{}, fmt.Errorf("%w: %q does not match rtsp://host[:port]/path", ErrInvalidURL, rtspURL)
	}

	t := Target{Host: m[1], Port: DefaultPort, Path: m[3]}
	if m[2] != "" {
		port, err := strconv.Atoi(m[2])
		if err != nil || port < 1 || port > 65535 {
			return Target{}, fmt.Errorf("%w: port %s out of range", ErrInvalidURL, m[2])
		}
		t.Port = port
	}
	if t.Path == "" {
		t.Path = "/"
	}

	return t, nil
}

// Address returns host:port suitable for net.Dial
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String returns the target in host:port/path form
func (t Target) String() string {
	return t.Address() + t.Path
}
