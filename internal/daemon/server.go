// Package daemon implements corrald: the control-socket server that owns
// the entity store and serves the client protocol.
package daemon

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/corraldev/corral/internal/apierror"
	"github.com/corraldev/corral/internal/enforce"
	"github.com/corraldev/corral/internal/protocol"
	"github.com/corraldev/corral/internal/store"
)

const Version = "0.1.0"

const shutdownTimeout = 5 * time.Second

type Server struct {
	listener net.Listener
	store    *store.Store
	log      *slog.Logger
	enforce  bool

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(
	listener net.Listener,
	st *store.Store,
	logger *slog.Logger,
	enforceResources bool,
) *Server {
	return &Server{
		listener: listener,
		store:    st,
		log:      logger,
		enforce:  enforceResources,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Serve accepts connections until the listener is closed, handling each on
// its own goroutine.
func (s *Server) Serve() error {
	s.log.Info("serving", "addr", s.listener.Addr().String())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			return err
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting connections and waits for in-flight requests,
// terminating stragglers after shutdownTimeout.
func (s *Server) Shutdown() {
	s.log.Info("shutting down server")

	s.listener.Close()

	doneCh := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-doneCh:
	case <-time.After(shutdownTimeout):
		s.log.Info("graceful shutdown timed out, terminating connections")

		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()

		<-doneCh
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		conn.Close()

		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req protocol.Request
		if err := dec.Decode(&req); err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("decode request", "err", err)
			}

			return
		}

		resp := s.dispatch(&req)

		if err := enc.Encode(resp); err != nil {
			s.log.Debug("encode response", "err", err)
			return
		}
	}
}

func (s *Server) dispatch(req *protocol.Request) protocol.Response {
	s.log.Debug("request",
		"method", req.Method,
		"name", req.Name,
		"property", req.Property,
	)

	switch req.Method {
	case protocol.MethodCreate:
		if err := s.store.Create(req.Name); err != nil {
			return protocol.ErrorResponse(err)
		}

		s.applyResources(req.Name)

		return protocol.Response{}

	case protocol.MethodFind:
		if err := s.store.Find(req.Name); err != nil {
			return protocol.ErrorResponse(err)
		}

		return protocol.Response{}

	case protocol.MethodDestroy:
		if err := s.store.Destroy(req.Name); err != nil {
			return protocol.ErrorResponse(err)
		}

		if s.enforce {
			if err := enforce.Remove(req.Name); err != nil {
				s.log.Warn("remove cgroup", "name", req.Name, "err", err)
			}
		}

		return protocol.Response{}

	case protocol.MethodList:
		return protocol.Response{Names: s.store.List()}

	case protocol.MethodSetProperty:
		if err := s.store.SetProperty(
			req.Name,
			req.Property,
			req.Value,
		); err != nil {
			return protocol.ErrorResponse(err)
		}

		if enforce.IsResourceKey(req.Property) {
			s.applyResources(req.Name)
		}

		return protocol.Response{}

	case protocol.MethodGetProperty:
		value, err := s.store.GetProperty(req.Name, req.Property)
		if err != nil {
			return protocol.ErrorResponse(err)
		}

		return protocol.Response{Value: value}

	case protocol.MethodReload:
		// Reload is a full barrier: the response is only written once the
		// state directory has been re-read (or discarded).
		if req.Discard {
			if err := s.store.Discard(); err != nil {
				return protocol.ErrorResponse(err)
			}

			return protocol.Response{}
		}

		if err := s.store.Load(); err != nil {
			return protocol.ErrorResponse(err)
		}

		return protocol.Response{}

	case protocol.MethodVersion:
		return protocol.Response{Value: Version}
	}

	return protocol.ErrorResponse(apierror.Newf(
		apierror.InvalidMethod,
		"unknown method %q",
		req.Method,
	))
}

// applyResources updates the entity's cgroup when enforcement is on.
// Enforcement failures are logged, not surfaced: the property itself was
// accepted and persisted.
func (s *Server) applyResources(name string) {
	if !s.enforce {
		return
	}

	props, err := s.store.Properties(name)
	if err != nil {
		return
	}

	if err := enforce.Apply(name, props); err != nil {
		s.log.Warn("apply cgroup", "name", name, "err", err)
	}
}
