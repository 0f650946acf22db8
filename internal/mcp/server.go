// Package mcp exposes sqlplus over the Model Context Protocol (JSON-RPC 2.0
// on stdio).
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

// DefaultMaxRows caps the rows returned by one tool call.
const DefaultMaxRows = 10000

// maxMessageSize bounds one JSON-RPC line.
const maxMessageSize = 4 << 20

// Querier runs statements through sqlplus. *sqlplus.Client implements it.
type Querier interface {
	RunQuery(ctx context.Context, query string, params any, opts ...sqlplus.CallOption) (sqlplus.Result, error)
	RunScript(ctx context.Context, path string, opts ...sqlplus.CallOption) (sqlplus.Result, error)
}

// Exporter stores a result in a table. *sink.Writer implements it.
type Exporter interface {
	Write(ctx context.Context, table string, res sqlplus.Result) (int, error)
}

// Options configure a Server.
type Options struct {
	// DatabaseName is used in resource URIs.
	DatabaseName string
	// MaxRows defaults to DefaultMaxRows.
	MaxRows int
	// Exporter enables the export tool when set.
	Exporter Exporter
	Logger   *zap.Logger
}

// Server handles MCP protocol over a line-delimited stream.
type Server struct {
	querier      Querier
	exporter     Exporter
	databaseName string
	maxRows      int
	logger       *zap.Logger
	initialized  bool
}

// NewServer creates a server answering with the given querier.
func NewServer(querier Querier, opts Options) *Server {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{
		querier:      querier,
		exporter:     opts.Exporter,
		databaseName: opts.DatabaseName,
		maxRows:      opts.MaxRows,
		logger:       opts.Logger,
	}
}

// Serve reads requests from r and writes responses to w until r is
// exhausted or ctx is cancelled. Requests are handled one at a time.
//
// Serve does not wait for a read blocked on r once ctx is done. When r is an
// io.Closer it is closed on cancellation so the reading goroutine can exit.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() { c.Close() })
		defer stop()
	}

	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		readErr <- readLines(readCtx, r, lines)
	}()

	g, gctx := errgroup.WithContext(ctx)
	responses := make(chan *JSONRPCResponse)

	g.Go(func() error {
		defer close(responses)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case line, ok := <-lines:
				if !ok {
					return <-readErr
				}
				response := s.handleMessage(gctx, []byte(line))
				if response == nil {
					continue
				}
				select {
				case responses <- response:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	g.Go(func() error {
		enc := json.NewEncoder(w)
		for response := range responses {
			if err := enc.Encode(response); err != nil {
				return fmt.Errorf("failed to write response: %w", err)
			}
		}
		return nil
	})

	return g.Wait()
}

// readLines forwards the non-blank lines of r until EOF or cancellation.
func readLines(ctx context.Context, r io.Reader, lines chan<- string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		// Closing r on cancellation surfaces here as a read error.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (s *Server) handleMessage(ctx context.Context, data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      nil,
			Error: &Error{
				Code:    ParseError,
				Message: "Parse error",
				Data:    err.Error(),
			},
		}
	}

	if req.JSONRPC != "2.0" {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &Error{
				Code:    InvalidRequest,
				Message: "Invalid JSON-RPC version",
			},
		}
	}

	return s.handleRequest(ctx, &req)
}

func (s *Server) handleRequest(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var result any
	var err *Error

	s.logger.Debug("Handling request", zap.String("method", req.Method))

	switch req.Method {
	case "tools/call", "resources/list", "resources/read":
		if !s.initialized {
			return &JSONRPCResponse{
				JSONRPC: "2.0",
				ID:      req.ID,
				Error: &Error{
					Code:    InvalidRequest,
					Message: "Server not initialized",
				},
			}
		}
	}

	switch req.Method {
	case "initialize":
		result, err = s.handleInitialize(req.Params)
	case "initialized", "notifications/initialized":
		// Notification, no response needed
		return nil
	case "tools/list":
		result, err = s.handleListTools()
	case "tools/call":
		result, err = s.handleCallTool(ctx, req.Params)
	case "resources/list":
		result, err = s.handleListResources(ctx)
	case "resources/read":
		result, err = s.handleReadResource(ctx, req.Params)
	case "ping":
		result = map[string]any{}
	default:
		err = &Error{
			Code:    MethodNotFound,
			Message: fmt.Sprintf("Method not found: %s", req.Method),
		}
	}

	// A typed nil result must not shadow the error in the encoded response.
	if err != nil {
		result = nil
	}

	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   err,
	}
}
