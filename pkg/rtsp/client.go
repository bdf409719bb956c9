package rtsp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rtsp-describe/pkg/logger"
)

const (
	// DefaultTimeout bounds the connect and every read/write of an exchange
	DefaultTimeout = 10 * time.Second
	// DefaultReadSize is the size of the single read used for each response
	DefaultReadSize = 4096
	// DefaultUserAgent is sent on both DESCRIBE requests
	DefaultUserAgent = "RTSP-Client/1.0"

	methodDescribe = "DESCRIBE"
)

// Recorder receives the outcome of every exchange
type Recorder interface {
	ObserveExchange(result string, duration time.Duration)
}

// Client performs authenticated DESCRIBE exchanges. It holds only settings
// and is safe for concurrent use; every exchange owns its own connection.
//
// Each response is taken from a single read of at most ReadSize bytes.
// A response split across TCP segments is truncated at the first segment.
type Client struct {
	Timeout   time.Duration
	UserAgent string
	ReadSize  int
	Logger    *logger.Logger
	Metrics   Recorder

	// OnChallenge, when set, is called with the raw Digest challenge
	// before the authenticated request is sent.
	OnChallenge func(header string)

	dialer func(ctx context.Context, network, address string) (net.Conn, error)
}

// NewClient creates a client with the given timeout (0 means DefaultTimeout)
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		Timeout:   timeout,
		UserAgent: DefaultUserAgent,
		ReadSize:  DefaultReadSize,
	}
}

// Describe performs the exchange with default settings
func Describe(ctx context.Context, rtspURL, username, password string) (string, error) {
	return NewClient(0).Describe(ctx, rtspURL, username, password)
}

// Describe sends an unauthenticated DESCRIBE, answers the Digest challenge
// and returns the raw text of the server's second response.
func (c *Client) Describe(ctx context.Context, rtspURL, username, password string) (string, error) {
	start := time.Now()
	resp, err := c.describe(ctx, rtspURL, username, password)
	if c.Metrics != nil {
		c.Metrics.ObserveExchange(ResultLabel(err), time.Since(start))
	}
	return resp, err
}

func (c *Client) describe(ctx context.Context, rtspURL, username, password string) (string, error) {
	log := c.logger().With("exchange", uuid.NewString())

	target, err := ParseTarget(rtspURL)
	if err != nil {
		log.Error("parse %q: %v", rtspURL, err)
		return "", &ExchangeError{Step: StepParse, Err: err}
	}
	log = log.With("target", target.Address())

	fail := func(step string, err error) (string, error) {
		log.Error("%s failed: %v", step, err)
		return "", &ExchangeError{Step: step, Target: target.String(), Err: err}
	}

	conn, err := c.dial(ctx, target.Address())
	if err != nil {
		return fail(StepConnect, fmt.Errorf("%w: %w", ErrConnection, err))
	}
	defer conn.Close()
	log.Debug("connected")

	// Cancellation unblocks any pending read or write.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := c.send(ctx, conn, buildRequest(target.Path, 1, c.userAgent(), "")); err != nil {
		return fail(StepSend, err)
	}

	first, err := c.receive(ctx, conn)
	if err != nil {
		return fail(StepReceive, err)
	}
	log.Debug("challenge response (%d bytes):\n%s", len(first), first)

	if !strings.Contains(first, "401 Unauthorized") {
		err := ErrAuthenticationNotRequested
		if code, ok := statusCode(first); ok {
			err = fmt.Errorf("%w: %w", ErrAuthenticationNotRequested,
				NewRTSPErrorWithContext(code, methodDescribe, target.Path))
		}
		return fail(StepChallenge, err)
	}

	challenge, err := ParseChallenge(first)
	if err != nil {
		return fail(StepChallenge, err)
	}
	if challenge.RequiresQOP() {
		log.Warn("challenge advertises qop, answering without it: %s", challenge.Header)
	}
	if c.OnChallenge != nil {
		c.OnChallenge(challenge.Header)
	} else {
		log.Debug("Digest challenge: %s", challenge.Header)
	}

	auth := challenge.authorization(username, password, methodDescribe, target.Path)
	if err := c.send(ctx, conn, buildRequest(target.Path, 2, c.userAgent(), auth)); err != nil {
		return fail(StepSend, err)
	}

	final, err := c.receive(ctx, conn)
	if err != nil {
		return fail(StepReceive, err)
	}

	if code, ok := statusCode(final); ok {
		log.Info("DESCRIBE %s answered %d %s", target.Path, code, GetErrorMessage(code))
	} else {
		log.Info("DESCRIBE %s answered (%d bytes)", target.Path, len(final))
	}

	return final, nil
}

func (c *Client) dial(ctx context.Context, address string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	if c.dialer != nil {
		return c.dialer(ctx, "tcp", address)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", address)
}

func (c *Client) send(ctx context.Context, conn net.Conn, request string) error {
	if err := ctx.Err(); err != nil {
		return ioError(ctx, err)
	}
	conn.SetWriteDeadline(c.deadline(ctx))
	if _, err := conn.Write([]byte(request)); err != nil {
		return ioError(ctx, err)
	}
	return nil
}

// receive performs exactly one bounded read
func (c *Client) receive(ctx context.Context, conn net.Conn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ioError(ctx, err)
	}
	conn.SetReadDeadline(c.deadline(ctx))

	buf := make([]byte, c.readSize())
	n, err := conn.Read(buf)
	if n > 0 {
		return string(buf[:n]), nil
	}
	if err == nil {
		err = errors.New("empty response")
	}
	return "", ioError(ctx, err)
}

// deadline must not push back the past deadline set on cancellation
func (c *Client) deadline(ctx context.Context) time.Time {
	if ctx.Err() != nil {
		return time.Unix(1, 0)
	}
	d := time.Now().Add(c.timeout())
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func (c *Client) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c *Client) readSize() int {
	if c.ReadSize <= 0 {
		return DefaultReadSize
	}
	return c.ReadSize
}

func (c *Client) userAgent() string {
	if c.UserAgent == "" {
		return DefaultUserAgent
	}
	return c.UserAgent
}

func (c *Client) logger() *logger.Logger {
	if c.Logger == nil {
		return logger.Default()
	}
	return c.Logger
}

func ioError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrIO, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// buildRequest renders a DESCRIBE request; authorization is omitted when empty
func buildRequest(uri string, cseq int, userAgent, authorization string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s RTSP/1.0\r\n", methodDescribe, uri)
	fmt.Fprintf(&b, "CSeq: %d\r\n", cseq)
	fmt.Fprintf(&b, "User-Agent: %s\r\n", userAgent)
	b.WriteString("Accept: application/sdp\r\n")
	if authorization != "" {
		fmt.Fprintf(&b, "Authorization: %s\r\n", authorization)
	}
	b.WriteString("\r\n")
	return b.String()
}

// statusCode reads the code from an "RTSP/1.0 200 OK" status line
func statusCode(response string) (int, bool) {
	line, _, _ := strings.Cut(response, "\n")
	parts := strings.Fields(line)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "RTSP/") {
		return 0, false
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return code, true
}
