package sandbox

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 2000 * time.Millisecond
	defaultClamp   = 4000
)

// Engine runs untrusted code in an isolated node subprocess. All
// communication happens over a JSON-lines protocol; the subprocess never
// shares memory, DOM, network, or storage with the host.
type Engine struct {
	NodePath string
	Timeout  time.Duration
	Clamp    int
}

func NewEngine() *Engine {
	return &Engine{
		NodePath: "node",
		Timeout:  defaultTimeout,
		Clamp:    defaultClamp,
	}
}

type inboundMsg struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type outboundMsg struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Level  string `json:"level,omitempty"`
	Args   string `json:"args,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type logEntry struct {
	Level string        `json:"level"`
	Args  []interface{} `json:"args"`
}

// Execute evaluates code in the sandbox and always resolves to a JSON
// payload: {result, logs} on success, {error, logs} on user-code
// failure, worker crash, or timeout. Infrastructure faults and user
// faults deliberately share one shape.
func (e *Engine) Execute(ctx context.Context, code string) string {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	nodePath := e.NodePath
	if nodePath == "" {
		nodePath = "node"
	}

	cmd := exec.Command(nodePath, "-e", harnessSource)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return e.envelope(errorPayload("failed to open sandbox: "+err.Error(), nil))
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return e.envelope(errorPayload("failed to open sandbox: "+err.Error(), nil))
	}
	if err := cmd.Start(); err != nil {
		return e.envelope(errorPayload("failed to start sandbox: "+err.Error(), nil))
	}

	// Teardown must run exactly once, whether the call ends by result,
	// error, or timeout.
	var once sync.Once
	teardown := func() {
		once.Do(func() {
			stdin.Close()
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
			go cmd.Wait()
		})
	}
	defer teardown()

	payload := pump(ctx, uuid.NewString(), code, stdin, stdout, timeout, teardown)
	return e.envelope(payload)
}

func (e *Engine) envelope(payload map[string]interface{}) string {
	clamp := e.Clamp
	if clamp <= 0 {
		clamp = defaultClamp
	}
	return Clamp(Encode(payload), clamp)
}

// pump drives one request/response exchange over the worker protocol,
// racing the terminal message against the timeout.
func pump(ctx context.Context, id, code string, in io.Writer, out io.Reader, timeout time.Duration, teardown func()) map[string]interface{} {
	logs := make([]logEntry, 0, 4)

	done := make(chan struct{})
	defer close(done)

	msgs := make(chan outboundMsg, 16)
	go func() {
		defer close(msgs)
		scanner := bufio.NewScanner(out)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			var m outboundMsg
			if err := json.Unmarshal(scanner.Bytes(), &m); err != nil || m.ID != id {
				continue
			}
			select {
			case msgs <- m:
			case <-done:
				return
			}
		}
	}()

	if err := json.NewEncoder(in).Encode(inboundMsg{ID: id, Code: code}); err != nil {
		teardown()
		return errorPayload("failed to dispatch code: "+err.Error(), logs)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			teardown()
			return errorPayload("Execution cancelled", logs)

		case <-timer.C:
			teardown()
			return errorPayload("Execution timed out", logs)

		case m, ok := <-msgs:
			if !ok {
				teardown()
				return errorPayload("Sandbox terminated unexpectedly", logs)
			}
			switch m.Type {
			case "log":
				var args []interface{}
				if err := json.Unmarshal([]byte(m.Args), &args); err != nil {
					args = []interface{}{m.Args}
				}
				level := m.Level
				if level == "" {
					level = "log"
				}
				logs = append(logs, logEntry{Level: level, Args: args})

			case "result":
				teardown()
				return map[string]interface{}{"result": decodeField(m.Result), "logs": logs}

			case "error":
				teardown()
				return map[string]interface{}{"error": decodeField(m.Error), "logs": logs}

			default:
				teardown()
				return errorPayload("Unknown sandbox message", logs)
			}
		}
	}
}

func errorPayload(msg string, logs []logEntry) map[string]interface{} {
	if logs == nil {
		logs = []logEntry{}
	}
	return map[string]interface{}{"error": msg, "logs": logs}
}

func decodeField(raw string) interface{} {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
