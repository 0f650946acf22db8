package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shakram02/go-sqlplus-mcp/sqlplus"
)

const resourceScheme = "oracle://"

const (
	listTablesQuery = "SELECT table_name FROM user_tables ORDER BY table_name;"
	readSchemaQuery = "SELECT column_name, data_type, data_length, nullable FROM user_tab_columns " +
		"WHERE table_name = %s ORDER BY column_id;"
)

func (s *Server) handleInitialize(params json.RawMessage) (*InitializeResult, *Error) {
	var initParams InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &initParams); err != nil {
			return nil, &Error{
				Code:    InvalidParams,
				Message: "Invalid initialize parameters",
				Data:    err.Error(),
			}
		}
	}

	s.initialized = true
	s.logger.Info("Client initialized",
		zap.String("client", initParams.ClientInfo.Name),
		zap.String("client_version", initParams.ClientInfo.Version),
		zap.String("protocol_version", initParams.ProtocolVersion))

	return &InitializeResult{
		ProtocolVersion: ProtocolVersion,
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}, nil
}

var callProperties = map[string]Property{
	"cast": {
		Type:        "boolean",
		Description: "Convert cell text to numbers, timestamps and nulls (default from configuration)",
	},
	"check_errors": {
		Type:        "boolean",
		Description: "Fail when the output contains error, warning or unknown-command markers (default from configuration)",
	},
}

var parametersProperty = Property{
	Type:        []string{"array", "object"},
	Description: "Values for %s (array) or %(name)s (object) placeholders, rendered as SQL literals",
}

func (s *Server) handleListTools() (*ListToolsResult, *Error) {
	queryProps := map[string]Property{
		"sql": {
			Type:        "string",
			Description: "The statement to run through sqlplus, terminated by ';'",
		},
		"parameters": parametersProperty,
	}
	scriptProps := map[string]Property{
		"path": {
			Type:        "string",
			Description: "Path of the SQL script, run with @path",
		},
	}
	for name, prop := range callProperties {
		queryProps[name] = prop
		scriptProps[name] = prop
	}

	tools := []Tool{
		{
			Name:        "query",
			Description: "Run a statement through Oracle sqlplus and return its rows as JSON",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: queryProps,
				Required:   []string{"sql"},
			},
		},
		{
			Name:        "run_script",
			Description: "Run a SQL script file through Oracle sqlplus and return the rows of its output",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: scriptProps,
				Required:   []string{"path"},
			},
		},
	}

	if s.exporter != nil {
		tools = append(tools, Tool{
			Name:        "export",
			Description: "Run a statement through Oracle sqlplus and copy its rows into a table of the export database",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"sql": {
						Type:        "string",
						Description: "The statement to run, terminated by ';'",
					},
					"table": {
						Type:        "string",
						Description: "Target table, created when missing",
					},
					"parameters": parametersProperty,
				},
				Required: []string{"sql", "table"},
			},
		})
	}

	return &ListToolsResult{Tools: tools}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (*CallToolResult, *Error) {
	var callParams CallToolParams
	if err := json.Unmarshal(params, &callParams); err != nil {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}

	switch callParams.Name {
	case "query":
		return s.executeQuery(ctx, callParams.Arguments)
	case "run_script":
		return s.executeScript(ctx, callParams.Arguments)
	case "export":
		if s.exporter != nil {
			return s.executeExport(ctx, callParams.Arguments)
		}
	}
	return nil, &Error{
		Code:    MethodNotFound,
		Message: fmt.Sprintf("Unknown tool: %s", callParams.Name),
	}
}

func (s *Server) executeQuery(ctx context.Context, args map[string]any) (*CallToolResult, *Error) {
	sqlQuery, ok := args["sql"].(string)
	if !ok || strings.TrimSpace(sqlQuery) == "" {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Missing or invalid 'sql' parameter",
		}
	}
	opts, rpcErr := callOptions(args)
	if rpcErr != nil {
		return nil, rpcErr
	}

	res, err := s.querier.RunQuery(ctx, sqlQuery, args["parameters"], opts...)
	if err != nil {
		return errorResult("Query error", err), nil
	}
	return s.rowsResult(res), nil
}

func (s *Server) executeScript(ctx context.Context, args map[string]any) (*CallToolResult, *Error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Missing or invalid 'path' parameter",
		}
	}
	opts, rpcErr := callOptions(args)
	if rpcErr != nil {
		return nil, rpcErr
	}

	res, err := s.querier.RunScript(ctx, path, opts...)
	if err != nil {
		return errorResult("Script error", err), nil
	}
	return s.rowsResult(res), nil
}

func (s *Server) executeExport(ctx context.Context, args map[string]any) (*CallToolResult, *Error) {
	sqlQuery, _ := args["sql"].(string)
	table, _ := args["table"].(string)
	if strings.TrimSpace(sqlQuery) == "" || strings.TrimSpace(table) == "" {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Missing or invalid 'sql' or 'table' parameter",
		}
	}

	// Exported columns need typed values to get typed target columns.
	res, err := s.querier.RunQuery(ctx, sqlQuery, args["parameters"], sqlplus.WithCast(true))
	if err != nil {
		return errorResult("Query error", err), nil
	}

	n, err := s.exporter.Write(ctx, table, res)
	if err != nil {
		return errorResult("Export error", err), nil
	}
	return &CallToolResult{
		Content: []Content{{Type: "text", Text: fmt.Sprintf("Exported %d rows into %s", n, table)}},
	}, nil
}

func callOptions(args map[string]any) ([]sqlplus.CallOption, *Error) {
	var opts []sqlplus.CallOption
	for _, flag := range []struct {
		name  string
		apply func(bool) sqlplus.CallOption
	}{
		{"cast", sqlplus.WithCast},
		{"check_errors", sqlplus.WithCheckErrors},
	} {
		raw, present := args[flag.name]
		if !present || raw == nil {
			continue
		}
		b, ok := raw.(bool)
		if !ok {
			return nil, &Error{
				Code:    InvalidParams,
				Message: fmt.Sprintf("Invalid '%s' parameter: expected a boolean", flag.name),
			}
		}
		opts = append(opts, flag.apply(b))
	}
	return opts, nil
}

// errorResult reports a failed sqlplus call as a tool error, so the client
// sees the Oracle diagnostic rather than a protocol failure.
func errorResult(prefix string, err error) *CallToolResult {
	var diag *sqlplus.Error
	text := fmt.Sprintf("%s: %v", prefix, err)
	if errors.As(err, &diag) {
		origin := "detected in output"
		if diag.Raised {
			origin = fmt.Sprintf("sqlplus exit status %d", diag.ExitStatus)
		}
		text = fmt.Sprintf("%s (%s): %s", prefix, origin, diag.Message)
	}
	return &CallToolResult{
		Content: []Content{{Type: "text", Text: text}},
		IsError: true,
	}
}

func (s *Server) rowsResult(res sqlplus.Result) *CallToolResult {
	rows := res.Rows()
	if len(rows) > s.maxRows {
		warning, _ := sqlplus.NewRow([]string{"_warning"},
			[]any{fmt.Sprintf("Result truncated at %d rows", s.maxRows)})
		rows = append(rows[:s.maxRows], warning)
	}
	if rows == nil {
		rows = []sqlplus.Row{}
	}

	resultJSON, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return &CallToolResult{
			Content: []Content{{Type: "text", Text: fmt.Sprintf("Failed to marshal results: %v", err)}},
			IsError: true,
		}
	}

	return &CallToolResult{
		Content: []Content{{Type: "text", Text: string(resultJSON)}},
	}
}

func (s *Server) handleListResources(ctx context.Context) (*ListResourcesResult, *Error) {
	if s.databaseName == "" {
		return &ListResourcesResult{Resources: []Resource{}}, nil
	}

	// Table names may legitimately contain marker words such as ERROR;
	// failures still surface through the exit status.
	res, err := s.querier.RunQuery(ctx, listTablesQuery, nil,
		sqlplus.WithCast(false), sqlplus.WithCheckErrors(false))
	if err != nil {
		return nil, &Error{
			Code:    InternalError,
			Message: fmt.Sprintf("Failed to list tables: %v", err),
		}
	}

	resources := []Resource{}
	for _, row := range res.Rows() {
		name, ok := row.Get("TABLE_NAME")
		if !ok {
			s.logger.Warn("Unexpected table listing row", zap.Strings("columns", row.Columns()))
			continue
		}
		tableName := fmt.Sprint(name)
		resources = append(resources, Resource{
			URI:      fmt.Sprintf("%s%s/%s/schema", resourceScheme, s.databaseName, tableName),
			Name:     fmt.Sprintf("Schema for table '%s'", tableName),
			MimeType: "application/json",
		})
	}

	return &ListResourcesResult{Resources: resources}, nil
}

func (s *Server) handleReadResource(ctx context.Context, params json.RawMessage) (*ReadResourceResult, *Error) {
	var readParams ReadResourceParams
	if err := json.Unmarshal(params, &readParams); err != nil {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid parameters",
			Data:    err.Error(),
		}
	}

	// Parse URI: oracle://dbname/tablename/schema
	uri := readParams.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid resource URI: must start with " + resourceScheme,
		}
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	if len(parts) != 3 || parts[1] == "" || parts[2] != "schema" {
		return nil, &Error{
			Code:    InvalidParams,
			Message: "Invalid resource URI format: expected " + resourceScheme + "dbname/tablename/schema",
		}
	}
	tableName := parts[1]

	res, err := s.querier.RunQuery(ctx, readSchemaQuery, []any{tableName},
		sqlplus.WithCast(true), sqlplus.WithCheckErrors(false))
	if err != nil {
		return nil, &Error{
			Code:    InternalError,
			Message: fmt.Sprintf("Failed to get schema: %v", err),
		}
	}

	schemaJSON, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, &Error{
			Code:    InternalError,
			Message: fmt.Sprintf("Failed to marshal schema: %v", err),
		}
	}

	return &ReadResourceResult{
		Contents: []ResourceContent{
			{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(schemaJSON),
			},
		},
	}, nil
}
