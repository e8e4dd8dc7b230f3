// Package respconn is a default, dependency-free rb.Connection built on the
// RESP2 wire protocol. It packs commands and parses responses the way the
// xenking-redis and twokaybee-redis clients do: a bufio.Reader sized to a
// conservative MTU, a ServerError type for "-ERR ..." replies, and a
// byte-level ParseInt that assumes a well-formed decimal.
package respconn

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/txodds/rb"
)

// conservativeMSS mirrors the pack's RESP clients: IPv6 minimum MTU (1280),
// less a 40 byte IP header and a 32 byte TCP header with timestamps.
const conservativeMSS = 1208

// ErrProtocol signals a malformed or unexpected RESP reply.
var ErrProtocol = errors.New("respconn: protocol violation")

// ServerError is a "-ERR ..." reply from the server.
type ServerError string

func (e ServerError) Error() string { return fmt.Sprintf("respconn: server error %q", string(e)) }

// Prefix returns the error kind, the first word of the reply ("ERR",
// "WRONGTYPE", ...).
func (e ServerError) Prefix() string {
	for i := 0; i < len(e); i++ {
		if e[i] == ' ' {
			return string(e[:i])
		}
	}
	return string(e)
}

// Conn is a single-connection RESP2 rb.Connection: Pack
// serializes a batch of commands as RESP arrays-of-bulk-strings, Write
// flushes them, and ParseResponse decodes exactly one reply per call, in
// the order Pack built them.
type Conn struct {
	addr    string
	auth    string
	timeout time.Duration

	conn net.Conn
	r    *bufio.Reader
}

// New returns a Conn that dials addr lazily on the first Connect call.
// auth, if non-empty, is sent as an AUTH command immediately after
// connecting. timeout, if nonzero, bounds both read and write deadlines.
func New(addr, auth string, timeout time.Duration) *Conn {
	return &Conn{addr: addr, auth: auth, timeout: timeout}
}

// Connect implements rb.Connection. It is a no-op on a Conn that is already
// connected.
func (c *Conn) Connect() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("tcp", c.addr)
	if err != nil {
		return err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
	c.conn = conn
	c.r = bufio.NewReaderSize(conn, conservativeMSS)

	if c.auth != "" {
		payload, err := c.Pack([]rb.Command{rb.NewCommand("AUTH", rb.Args1(c.auth))})
		if err != nil {
			return err
		}
		if err := c.Write(payload); err != nil {
			return err
		}
		if _, err := c.ParseResponse("AUTH"); err != nil {
			return fmt.Errorf("respconn: AUTH failed: %w", err)
		}
	}
	return nil
}

// Pack implements rb.Connection, encoding each command as a RESP array of
// bulk strings: "*<n>\r\n$<len>\r\n<arg>\r\n...".
func (c *Conn) Pack(cmds []rb.Command) ([]byte, error) {
	var buf []byte
	for _, cmd := range cmds {
		n := 1 + len(cmd.Args)
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(n), 10)
		buf = append(buf, '\r', '\n')

		buf = appendBulk(buf, []byte(cmd.Name))
		for _, arg := range cmd.Args {
			buf = appendBulk(buf, arg)
		}
	}
	return buf, nil
}

func appendBulk(buf, s []byte) []byte {
	buf = append(buf, '$')
	buf = strconv.AppendInt(buf, int64(len(s)), 10)
	buf = append(buf, '\r', '\n')
	buf = append(buf, s...)
	buf = append(buf, '\r', '\n')
	return buf
}

// Write implements rb.Connection.
func (c *Conn) Write(data []byte) error {
	if c.conn == nil {
		return fmt.Errorf("respconn: not connected")
	}
	if c.timeout != 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	_, err := c.conn.Write(data)
	return err
}

// ParseResponse implements rb.Connection, decoding exactly one RESP reply.
// commandName is accepted for interface symmetry with richer codecs that
// need it to pick a decode shape; RESP2 type-tags the reply itself, so it
// goes unused here.
func (c *Conn) ParseResponse(commandName string) (any, error) {
	if c.r == nil {
		return nil, fmt.Errorf("respconn: not connected")
	}
	if c.timeout != 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	}
	return c.parseOne()
}

func (c *Conn) parseOne() (any, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty reply line", ErrProtocol)
	}

	switch line[0] {
	case '+':
		return string(line[1:]), nil
	case '-':
		return nil, ServerError(line[1:])
	case ':':
		return parseInt(line[1:]), nil
	case '$':
		n := int(parseInt(line[1:]))
		if n < 0 {
			return nil, nil
		}
		data := make([]byte, n+2)
		if _, err := readFull(c.r, data); err != nil {
			return nil, err
		}
		return data[:n], nil
	case '*':
		n := int(parseInt(line[1:]))
		if n < 0 {
			return nil, nil
		}
		out := make([]any, n)
		for i := range out {
			v, err := c.parseOne()
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unexpected reply tag %q", ErrProtocol, line[0])
	}
}

func (c *Conn) readLine() ([]byte, error) {
	line, err := c.r.ReadSlice('\n')
	if err != nil {
		return nil, err
	}
	if n := len(line); n >= 2 && line[n-2] == '\r' {
		return line[:n-2], nil
	}
	return nil, fmt.Errorf("%w: reply not terminated by CRLF", ErrProtocol)
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// parseInt assumes a valid, optionally-signed decimal string - no
// validation - matching the pack's RESP clients' ParseInt helper.
func parseInt(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	neg := b[0] == '-'
	if neg {
		b = b[1:]
	}
	var v int64
	for _, d := range b {
		v = v*10 + int64(d-'0')
	}
	if neg {
		v = -v
	}
	return v
}

// Disconnect implements rb.Connection.
func (c *Conn) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.r = nil
	return err
}

// RetryOnTimeout implements rb.Connection: a bare TCP connection has no
// protocol-level state that a timeout could leave dirty mid-command (RESP2
// has no pipelining markers to resynchronize), so retrying is safe.
func (c *Conn) RetryOnTimeout() bool { return true }

// Ready implements rb.Connection by peeking at the read buffer without
// consuming it: SetReadDeadline bounds how long Peek may block, so Ready
// never leaves data half-consumed for the real ParseResponse call that
// follows.
func (c *Conn) Ready(timeout time.Duration) (bool, error) {
	if c.conn == nil || c.r == nil {
		return false, fmt.Errorf("respconn: not connected")
	}
	if c.r.Buffered() > 0 {
		return true, nil
	}
	deadline := time.Now().Add(timeout)
	_ = c.conn.SetReadDeadline(deadline)
	_, err := c.r.Peek(1)
	_ = c.conn.SetReadDeadline(time.Time{})
	if err == nil {
		return true, nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return false, nil
	}
	return false, err
}
