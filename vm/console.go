package vm

import (
	"errors"
	"net"
	"time"
)

// StdoutSink is whatever the print syscall writes its bytes to. The
// interpreter holds an exclusive mutable handle to it during Execute and
// writes to it only from SYSCALLI 1; the sink's own thread safety is the
// caller's concern.
type StdoutSink interface {
	Write(p []byte) (int, error)
}

var errConsoleNotAttached = errors.New("vm: console has no attached connection")

// SerialConsole is a StdoutSink backed by a TCP loopback connection instead
// of the process's own stdout, so a second process (or a test) can attach
// and observe the SYSCALLI 1 byte stream over the wire. Writes never block
// the VM forever: each one carries a short deadline.
type SerialConsole struct {
	ln   net.Listener
	conn net.Conn
}

// ListenSerialConsole opens a loopback listener on an OS-assigned port and
// returns immediately; call Accept to wait for a client to attach.
func ListenSerialConsole() (*SerialConsole, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	return &SerialConsole{ln: ln}, nil
}

// Addr returns the address a client should dial.
func (c *SerialConsole) Addr() net.Addr { return c.ln.Addr() }

// Accept blocks until a client attaches.
func (c *SerialConsole) Accept() error {
	conn, err := c.ln.Accept()
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// Write implements StdoutSink. It fails fast with errConsoleNotAttached
// rather than blocking forever if nothing has attached yet.
func (c *SerialConsole) Write(p []byte) (int, error) {
	if c.conn == nil {
		return 0, errConsoleNotAttached
	}
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.Write(p)
}

// Close releases the listener and, if attached, the connection.
func (c *SerialConsole) Close() error {
	var err error
	if c.conn != nil {
		err = c.conn.Close()
	}
	if lerr := c.ln.Close(); err == nil {
		err = lerr
	}
	return err
}
