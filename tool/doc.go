// Package tool provides the registry and binding infrastructure the
// workflow dispatcher uses to expose its eight operations over MCP.
//
// This package includes:
//   - Registry and Handler types for tool management
//   - Function binding with automatic JSON-schema generation from struct tags
//
// # Basic Usage
//
// Define tool arguments as a struct with tags, then use Bind or BindTo:
//
//	type AdvanceArgs struct {
//	    Output string `json:"output" desc:"output of the step just completed" required:"true"`
//	}
//
//	t, h := tool.MustBind("workflow_advance", "Advance the workflow to its next unit of work",
//	    func(ctx context.Context, args AdvanceArgs) (string, error) {
//	        resp, err := d.WorkflowAdvance(args.Output)
//	        if err != nil {
//	            return "", err
//	        }
//	        data, err := json.Marshal(resp)
//	        return string(data), err
//	    })
//
//	registry := tool.NewRegistry()
//	registry.MustRegister(t, h)
//
// # Supported Struct Tags
//
// The following tags are supported for schema generation:
//
//	json:"name"      - Property name (required for inclusion)
//	desc:"text"      - Description surfaced to the calling agent
//	required:"true"  - Mark field as required
//	enum:"a,b,c"     - Allowed values (comma-separated)
//	min:"0"          - Minimum value (numbers)
//	max:"100"        - Maximum value (numbers)
//	minLength:"1"    - Minimum string length
//	maxLength:"100"  - Maximum string length
//	pattern:"regex"  - String pattern
//	default:"value"  - Default value
//	minItems:"1"     - Minimum array items
//	maxItems:"10"    - Maximum array items
package tool
