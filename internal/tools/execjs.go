package tools

import (
	"context"

	"github.com/pythonicvarun/anveshak/internal/sandbox"
)

// ExecuteJavaScript runs model-authored code in the sandbox engine.
// The result envelope always includes captured console output.
type ExecuteJavaScript struct {
	Engine *sandbox.Engine
}

func NewExecuteJavaScript(engine *sandbox.Engine) *ExecuteJavaScript {
	return &ExecuteJavaScript{Engine: engine}
}

func (t *ExecuteJavaScript) Name() string        { return "executeJavaScript" }
func (t *ExecuteJavaScript) Description() string { return "Execute JS code." }

func (t *ExecuteJavaScript) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"code": map[string]interface{}{"type": "string"},
	})
}

func (t *ExecuteJavaScript) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	return t.Engine.Execute(ctx, stringArg(args, "code")), nil
}
