package sqlplus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeExecutor struct {
	out   Output
	err   error
	name  string
	args  []string
	stdin string
	ctx   context.Context
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args []string, stdin string) (Output, error) {
	f.ctx, f.name, f.args, f.stdin = ctx, name, args, stdin
	return f.out, f.err
}

var testConfig = Config{
	Hostname:    "localhost",
	Database:    "xe",
	Username:    "test",
	Password:    "secret",
	Cast:        true,
	CheckErrors: true,
}

func TestNewClient_MissingConfiguration(t *testing.T) {
	cfg := testConfig
	cfg.Password = ""
	cfg.Hostname = ""

	_, err := NewClient(cfg)
	require.ErrorIs(t, err, ErrMissingConfiguration)
	assert.Contains(t, err.Error(), "hostname, password")
}

func TestClient_RunQuery(t *testing.T) {
	exec := &fakeExecutor{out: Output{Stdout: responseTable}}
	client, err := NewClient(testConfig, WithExecutor(exec))
	require.NoError(t, err)

	res, err := client.RunQuery(context.Background(), "SELECT %(response)s AS response FROM DUAL;", map[string]any{"response": 42})
	require.NoError(t, err)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, map[string]any{"RESPONSE": int64(42)}, res.Row(0).Map())

	assert.Equal(t, DefaultExecutable, exec.name)
	assert.Equal(t, []string{"-S", "-L", "-M", "HTML ON", "test/secret@localhost/xe"}, exec.args)
	assert.True(t, strings.HasPrefix(exec.stdin, Preamble))
	assert.True(t, strings.HasSuffix(exec.stdin, "SELECT 42 AS response FROM DUAL;\n"))
}

func TestClient_CallOptionsOverrideDefaults(t *testing.T) {
	exec := &fakeExecutor{out: Output{Stdout: "<table><tr><th>MESSAGE</th></tr><tr><td>unknown command</td></tr></table>"}}
	client, err := NewClient(testConfig, WithExecutor(exec))
	require.NoError(t, err)

	_, err = client.RunQuery(context.Background(), "SELECT 'unknown command' AS message FROM DUAL;", nil)
	require.ErrorIs(t, err, ErrDetected)

	res, err := client.RunQuery(context.Background(), "SELECT 'unknown command' AS message FROM DUAL;", nil,
		WithCheckErrors(false), WithCast(false))
	require.NoError(t, err)
	assert.Equal(t, "unknown command", res.Row(0).Value(0))
}

func TestClient_RaisedErrorEchoesCommand(t *testing.T) {
	exec := &fakeExecutor{out: Output{
		Stdout:     "<html><body>\nERROR at line 1:\nORA-00942: table or view does not exist\n</body></html>",
		ExitStatus: 174,
	}}
	client, err := NewClient(testConfig, WithExecutor(exec))
	require.NoError(t, err)

	_, err = client.RunQuery(context.Background(), "SELECT 42 FROM DUO;", nil)

	var diag *Error
	require.ErrorAs(t, err, &diag)
	assert.True(t, diag.Raised)
	assert.Equal(t, "SELECT 42 FROM DUO;", diag.Command)
	assert.Contains(t, diag.Message, "ORA-00942: table or view does not exist")
}

func TestClient_ExecutorError(t *testing.T) {
	boom := errors.New("exec: \"sqlplus\": executable file not found in $PATH")
	client, err := NewClient(testConfig, WithExecutor(&fakeExecutor{err: boom}))
	require.NoError(t, err)

	_, err = client.RunQuery(context.Background(), "SELECT 1 FROM DUAL;", nil)
	assert.ErrorIs(t, err, boom)
}

func TestClient_BadParameters(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := NewClient(testConfig, WithExecutor(exec))
	require.NoError(t, err)

	_, err = client.RunQuery(context.Background(), "%s %s", []any{1})
	require.Error(t, err)
	assert.Empty(t, exec.stdin, "sqlplus must not run with unresolved parameters")
}

func TestClient_Timeout(t *testing.T) {
	cfg := testConfig
	cfg.Timeout = time.Minute
	exec := &fakeExecutor{out: Output{Stdout: responseTable}}
	client, err := NewClient(cfg, WithExecutor(exec))
	require.NoError(t, err)

	_, err = client.RunQuery(context.Background(), "SELECT 42 AS response FROM DUAL;", nil)
	require.NoError(t, err)

	_, ok := exec.ctx.Deadline()
	assert.True(t, ok)
}

func TestClient_RunScript(t *testing.T) {
	script := filepath.Join(t.TempDir(), "test.sql")
	require.NoError(t, os.WriteFile(script, []byte("SELECT 42 AS response FROM DUAL;\n"), 0o644))

	exec := &fakeExecutor{out: Output{Stdout: responseTable}}
	client, err := NewClient(testConfig, WithExecutor(exec))
	require.NoError(t, err)

	res, err := client.RunScript(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())
	assert.True(t, strings.HasSuffix(exec.stdin, "@"+script+"\n"))
}

func TestClient_RunScriptNotFound(t *testing.T) {
	client, err := NewClient(testConfig, WithExecutor(&fakeExecutor{}))
	require.NoError(t, err)

	_, err = client.RunScript(context.Background(), "unknown.sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Script 'unknown.sql' was not found")
}

func TestClient_LogsWithoutPassword(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	exec := &fakeExecutor{out: Output{Stdout: responseTable}}
	client, err := NewClient(testConfig, WithExecutor(exec), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = client.RunQuery(context.Background(), "SELECT 42 AS response FROM DUAL;", nil)
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		for _, field := range entry.Context {
			assert.NotContains(t, field.String, "secret")
		}
	}
}
