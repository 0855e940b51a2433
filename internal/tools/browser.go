package tools

import (
	"context"
	"encoding/json"
	"os/exec"
	"runtime"

	"github.com/pythonicvarun/anveshak/internal/guard"
)

// OpenInBrowser hands a URL to the user's default browser. Opener is
// injectable for tests and headless hosts.
type OpenInBrowser struct {
	Guard  *guard.Guard
	Opener func(ctx context.Context, url string) error
}

func NewOpenInBrowser(g *guard.Guard) *OpenInBrowser {
	return &OpenInBrowser{Guard: g, Opener: systemOpen}
}

func (t *OpenInBrowser) Name() string        { return "openInBrowser" }
func (t *OpenInBrowser) Description() string { return "Open a URL in the browser." }

func (t *OpenInBrowser) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"url": map[string]interface{}{"type": "string"},
	})
}

func (t *OpenInBrowser) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	url := stringArg(args, "url")

	if v := t.Guard.CheckHost(url); v != nil {
		return browserResult(false, "Refused to open link: "+v.Message), nil
	}
	if err := t.Opener(ctx, url); err != nil {
		return browserResult(false, "Failed to open link in the browser."), nil
	}
	return browserResult(true, "Successfully opened link in the browser."), nil
}

func browserResult(ok bool, msg string) string {
	out, _ := json.Marshal(map[string]interface{}{
		"success": ok,
		"message": msg,
	})
	return string(out)
}

func systemOpen(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	return cmd.Start()
}
