package test

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"sync"
	"time"
)

// MockRTSPServer is a mock RTSP server answering DESCRIBE requests.
//
// By default it challenges unauthenticated requests with Digest and accepts
// requests whose Authorization response matches the configured credentials.
// SetResponses switches it to scripted mode, replying with fixed texts in order.
type MockRTSPServer struct {
	listener net.Listener
	port     int

	mu              sync.Mutex
	running         bool
	requests        []string
	connections     []net.Conn
	clientCloses    int
	scripted        []string
	realm           string
	nonce           string
	username        string
	password        string
	responseDelay   time.Duration
	closeAfterReads int
}

// NewMockRTSPServer creates a new mock RTSP server listening on a random local port
func NewMockRTSPServer() (*MockRTSPServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}

	return &MockRTSPServer{
		listener: listener,
		port:     listener.Addr().(*net.TCPAddr).Port,
		realm:    "testrealm",
		nonce:    "abc123",
		username: "admin",
		password: "123456",
	}, nil
}

// Start starts accepting connections
func (s *MockRTSPServer) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	go s.acceptConnections()
}

// Stop closes the listener and every open connection
func (s *MockRTSPServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	for _, conn := range s.connections {
		conn.Close()
	}
	s.listener.Close()
}

// Port returns the server port
func (s *MockRTSPServer) Port() int {
	return s.port
}

// URL returns an RTSP URL for path on this server
func (s *MockRTSPServer) URL(path string) string {
	return fmt.Sprintf("rtsp://127.0.0.1:%d%s", s.port, path)
}

// SetRequireAuth sets the credentials accepted in Digest mode
func (s *MockRTSPServer) SetRequireAuth(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = username
	s.password = password
}

// SetChallenge sets the realm and nonce sent in the 401 challenge
func (s *MockRTSPServer) SetChallenge(realm, nonce string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.realm = realm
	s.nonce = nonce
}

// SetResponses switches to scripted mode. The n-th request on a connection
// receives responses[n]; once exhausted the connection is closed.
func (s *MockRTSPServer) SetResponses(responses ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scripted = responses
}

// SetResponseDelay sets a delay before every response
func (s *MockRTSPServer) SetResponseDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responseDelay = delay
}

// SetCloseAfter makes the server drop the connection, without replying,
// once it has read n requests on it.
func (s *MockRTSPServer) SetCloseAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeAfterReads = n
}

// GetRequestCount returns number of requests received
func (s *MockRTSPServer) GetRequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.requests)
}

// GetRequests returns a copy of all requests received, in order
func (s *MockRTSPServer) GetRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.requests...)
}

// GetLastRequest returns the last request received
func (s *MockRTSPServer) GetLastRequest() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return ""
	}
	return s.requests[len(s.requests)-1]
}

// GetClientCloses returns how many connections the client closed
func (s *MockRTSPServer) GetClientCloses() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clientCloses
}

// ExpectedResponse returns the Digest response the server accepts for uri
func (s *MockRTSPServer) ExpectedResponse(uri string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return digestResponse(s.username, s.password, s.realm, s.nonce, "DESCRIBE", uri)
}

func (s *MockRTSPServer) acceptConnections() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			running := s.running
			s.mu.Unlock()

			if !running {
				return
			}
			continue
		}

		s.mu.Lock()
		s.connections = append(s.connections, conn)
		s.mu.Unlock()

		go s.handleConnection(conn)
	}
}

func (s *MockRTSPServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	for n := 0; ; n++ {
		request, err := readRequest(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.mu.Lock()
				s.clientCloses++
				s.mu.Unlock()
			}
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, request)
		delay := s.responseDelay
		closeAfter := s.closeAfterReads
		s.mu.Unlock()

		if closeAfter > 0 && n+1 >= closeAfter {
			return
		}

		if delay > 0 {
			time.Sleep(delay)
		}

		response, ok := s.respond(n, request)
		if !ok {
			return
		}
		if _, err := conn.Write([]byte(response)); err != nil {
			return
		}
	}
}

func (s *MockRTSPServer) respond(n int, request string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scripted != nil {
		if n >= len(s.scripted) {
			return "", false
		}
		return s.scripted[n], true
	}

	cseq := extractCSeq(request)
	uri := extractURI(request)
	expected := digestResponse(s.username, s.password, s.realm, s.nonce, "DESCRIBE", uri)

	if extractParam(request, "response") != expected {
		return fmt.Sprintf("RTSP/1.0 401 Unauthorized\r\n"+
			"CSeq: %s\r\n"+
			"WWW-Authenticate: Digest realm=\"%s\", nonce=\"%s\"\r\n"+
			"\r\n", cseq, s.realm, s.nonce), true
	}

	sdp := "v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=Test Stream\r\n" +
		"t=0 0\r\n" +
		"m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:96 H264/90000\r\n"

	return fmt.Sprintf("RTSP/1.0 200 OK\r\n"+
		"CSeq: %s\r\n"+
		"Content-Type: application/sdp\r\n"+
		"Content-Length: %d\r\n"+
		"\r\n"+
		"%s", cseq, len(sdp), sdp), true
}

func readRequest(reader *bufio.Reader) (string, error) {
	var request strings.Builder

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}

		request.WriteString(line)

		if line == "\r\n" {
			return request.String(), nil
		}
	}
}

func extractCSeq(request string) string {
	for _, line := range strings.Split(request, "\r\n") {
		if value, ok := strings.CutPrefix(line, "CSeq:"); ok {
			return strings.TrimSpace(value)
		}
	}
	return "0"
}

func extractURI(request string) string {
	line, _, _ := strings.Cut(request, "\r\n")
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// extractParam returns a quoted parameter of the Authorization header
func extractParam(request, key string) string {
	re := regexp.MustCompile(`(?m)^Authorization:.*\b` + regexp.QuoteMeta(key) + `="([^"]*)"`)
	m := re.FindStringSubmatch(request)
	if m == nil {
		return ""
	}
	return m[1]
}

func digestResponse(username, password, realm, nonce, method, uri string) string {
	ha1 := md5Hex(username + ":" + realm + ":" + password)
	ha2 := md5Hex(method + ":" + uri)
	return md5Hex(ha1 + ":" + nonce + ":" + ha2)
}

func md5Hex(data string) string {
	sum := md5.Sum([]byte(data))
	return hex.EncodeToString(sum[:])
}
