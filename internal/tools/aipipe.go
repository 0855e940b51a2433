package tools

import "context"

// CallAIPipe acknowledges a dataflow request. The pipeline itself runs
// out of band; the model only needs the acceptance receipt.
type CallAIPipe struct{}

func (t *CallAIPipe) Name() string        { return "callAIPipe" }
func (t *CallAIPipe) Description() string { return "Run a dataflow." }

func (t *CallAIPipe) Parameters() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"pipeline": map[string]interface{}{"type": "string"},
	})
}

func (t *CallAIPipe) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	return `{"success":true}`, nil
}
