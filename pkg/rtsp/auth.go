package rtsp

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Challenge holds the Digest parameters extracted from a 401 response
type Challenge struct {
	Realm  string
	Nonce  string
	Header string // raw value following "WWW-Authenticate: Digest"
}

var (
	digestHeaderPattern = regexp.MustCompile(`(?im)^WWW-Authenticate:[ \t]*Digest[ \t]+(.*?)\r?$`)
	realmPattern        = regexp.MustCompile(`\brealm="([^"]*)"`)
	noncePattern        = regexp.MustCompile(`\bnonce="([^"]*)"`)
	qopPattern          = regexp.MustCompile(`\bqop=`)
)

// DigestResponse computes the qop-less MD5 Digest response (RFC 2617):
//
//	HA1      = MD5(username:realm:password)
//	HA2      = MD5(method:uri)
//	response = MD5(HA1:nonce:HA2)
func DigestResponse(username, password, realm, nonce, method, uri string) string {
	ha1 := md5Hash(username + ":" + realm + ":" + password)
	ha2 := md5Hash(method + ":" + uri)
	return md5Hash(strings.Join([]string{ha1, nonce, ha2}, ":"))
}

// ParseChallenge extracts realm and nonce from the Digest WWW-Authenticate line
// of a raw response. It does not parse any other header.
func ParseChallenge(response string) (*Challenge, error) {
	m := digestHeaderPattern.FindStringSubmatch(response)
	if m == nil {
		return nil, fmt.Errorf("%w: WWW-Authenticate Digest header not found", ErrMalformedChallenge)
	}
	header := strings.TrimSpace(m[1])

	realm := realmPattern.FindStringSubmatch(header)
	if realm == nil {
		return nil, fmt.Errorf("%w: realm missing", ErrMalformedChallenge)
	}

	// an empty realm is a valid protection space; an empty nonce leaves nothing to answer
	nonce := noncePattern.FindStringSubmatch(header)
	if nonce == nil || nonce[1] == "" {
		return nil, fmt.Errorf("%w: nonce missing", ErrMalformedChallenge)
	}

	return &Challenge{
		Realm:  realm[1],
		Nonce:  nonce[1],
		Header: header,
	}, nil
}

// RequiresQOP reports whether the challenge advertises a qop directive
func (c *Challenge) RequiresQOP() bool {
	return qopPattern.MatchString(c.Header)
}

// authorization builds the Authorization header value for the challenge
func (c *Challenge) authorization(username, password, method, uri string) string {
	response := DigestResponse(username, password, c.Realm, c.Nonce, method, uri)
	return fmt.Sprintf(`Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`,
		username, c.Realm, c.Nonce, uri, response)
}

func md5Hash(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}
