// Package lanes provides the shared primitives used across the lanes
// workflow core: the tool-calling vocabulary (Tool, ToolCall, ToolResult)
// that the dispatcher and its stdio transport exchange with the executor,
// and the reflection-based JSON Schema generator used to describe each
// tool's arguments from a plain Go struct.
//
// # Tool vocabulary
//
// A Tool is a named, described, schema-carrying operation an executor can
// invoke. The workflow dispatcher (see the dispatcher and mcp packages)
// registers eight such tools and serves them over a line-delimited JSON
// stdio transport.
//
//	type StartArgs struct {
//	    Summary string `json:"summary,omitempty" desc:"optional one-line summary" maxLength:"100"`
//	}
//
//	schema := lanes.MustSchemaFor[StartArgs]()
//
// # Schema generation
//
// SchemaFor reflects over a struct type's exported fields and their
// json/desc/required/enum/min/max (and friends) tags to build a JSON
// Schema document, so tool argument structs are the single source of
// truth for both Go-side decoding and the schema advertised to callers.
package lanes
