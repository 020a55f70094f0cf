// Package client is the Go API for a running corrald: it speaks the
// control-socket protocol and exposes typed entity handles.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/corraldev/corral/internal/apierror"
	"github.com/corraldev/corral/internal/protocol"
)

// DefaultSocket is where corrald listens unless configured otherwise.
const DefaultSocket = "/run/corral/corrald.sock"

// Client is a single connection to the daemon. It is not safe for
// concurrent use; open one per goroutine.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	enc     *json.Encoder
	dec     *json.Decoder
}

// Connect dials the daemon's unix socket. The timeout bounds the dial and
// every subsequent call on the connection.
func Connect(socket string, timeout time.Duration) (*Client, error) {
	if socket == "" {
		socket = DefaultSocket
	}

	conn, err := net.DialTimeout("unix", socket, timeout)
	if err != nil {
		return nil, apierror.Newf(
			apierror.SocketUnavailable,
			"connect to %s: %v",
			socket, err,
		)
	}

	return &Client{
		conn:    conn,
		timeout: timeout,
		enc:     json.NewEncoder(conn),
		dec:     json.NewDecoder(conn),
	}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(req *protocol.Request) (*protocol.Response, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, apierror.Newf(
			apierror.SocketError,
			"set deadline: %v",
			err,
		)
	}

	if err := c.enc.Encode(req); err != nil {
		return nil, transportError("send request", err)
	}

	var resp protocol.Response
	if err := c.dec.Decode(&resp); err != nil {
		return nil, transportError("receive response", err)
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	return &resp, nil
}

func transportError(op string, err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return apierror.Newf(apierror.SocketTimeout, "%s: %v", op, err)
	}

	return apierror.Newf(apierror.SocketError, "%s: %v", op, err)
}

// Entity is a handle to a named container on the daemon.
type Entity struct {
	client *Client
	name   string
}

func (e *Entity) Name() string {
	return e.name
}

// Create allocates a new container and returns its handle.
func (c *Client) Create(name string) (*Entity, error) {
	if _, err := c.call(&protocol.Request{
		Method: protocol.MethodCreate,
		Name:   name,
	}); err != nil {
		return nil, err
	}

	return &Entity{client: c, name: name}, nil
}

// Find looks up an existing container by name.
func (c *Client) Find(name string) (*Entity, error) {
	if _, err := c.call(&protocol.Request{
		Method: protocol.MethodFind,
		Name:   name,
	}); err != nil {
		return nil, err
	}

	return &Entity{client: c, name: name}, nil
}

// Destroy removes the named container and all its properties.
func (c *Client) Destroy(name string) error {
	_, err := c.call(&protocol.Request{
		Method: protocol.MethodDestroy,
		Name:   name,
	})

	return err
}

// List returns the names of all containers, sorted.
func (c *Client) List() ([]string, error) {
	resp, err := c.call(&protocol.Request{Method: protocol.MethodList})
	if err != nil {
		return nil, err
	}

	return resp.Names, nil
}

// SetProperty sets a property on the named container. Strings pass through
// unchanged; booleans are encoded as their lowercase tokens.
func (c *Client) SetProperty(name, key string, value any) error {
	encoded, err := encodeValue(value)
	if err != nil {
		return err
	}

	_, err = c.call(&protocol.Request{
		Method:   protocol.MethodSetProperty,
		Name:     name,
		Property: key,
		Value:    encoded,
	})

	return err
}

// GetProperty returns the current value of a property on the named
// container.
func (c *Client) GetProperty(name, key string) (string, error) {
	resp, err := c.call(&protocol.Request{
		Method:   protocol.MethodGetProperty,
		Name:     name,
		Property: key,
	})
	if err != nil {
		return "", err
	}

	return resp.Value, nil
}

// GetPropertyBool reads a boolean property.
func (c *Client) GetPropertyBool(name, key string) (bool, error) {
	value, err := c.GetProperty(name, key)
	if err != nil {
		return false, err
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, apierror.Newf(
			apierror.InvalidValue,
			"property %s is not a bool: %q",
			key, value,
		)
	}

	return b, nil
}

// Reload makes the daemon re-read its persisted state; with discard it
// drops all entities instead. The call returns only once the reload has
// completed.
func (c *Client) Reload(discard bool) error {
	_, err := c.call(&protocol.Request{
		Method:  protocol.MethodReload,
		Discard: discard,
	})

	return err
}

// Version reports the daemon version.
func (c *Client) Version() (string, error) {
	resp, err := c.call(&protocol.Request{Method: protocol.MethodVersion})
	if err != nil {
		return "", err
	}

	return resp.Value, nil
}

func (e *Entity) SetProperty(key string, value any) error {
	return e.client.SetProperty(e.name, key, value)
}

func (e *Entity) GetProperty(key string) (string, error) {
	return e.client.GetProperty(e.name, key)
}

func (e *Entity) GetPropertyBool(key string) (bool, error) {
	return e.client.GetPropertyBool(e.name, key)
}

func (e *Entity) Destroy() error {
	return e.client.Destroy(e.name)
}

func encodeValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	return "", apierror.Newf(
		apierror.NotSupported,
		"unsupported property value type %T",
		value,
	)
}
