package llms

import (
	"encoding/json"

	"github.com/invopop/jsonschema"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
)

// Structured response shapes for the four operations. Schemas are derived
// from these structs so the provider adapters and the parser cannot drift
// apart.

type variantsResponse struct {
	Prompts []string `json:"prompts" jsonschema_description:"A list of prompts that are better versions of the provided prompt."`
}

type evaluationResponse struct {
	Evaluation string  `json:"evaluation" jsonschema_description:"Justification for your score."`
	Score      float64 `json:"score" jsonschema_description:"A score between 1-10 for the prompt, with 10 being the highest."`
}

func (r evaluationResponse) judgment() core.Judgment {
	return core.Judgment{Justification: r.Evaluation, Score: r.Score}
}

type crossoverResponse struct {
	Analysis string `json:"analysis" jsonschema_description:"Your step-by-step analysis of the two prompts."`
	Prompt   string `json:"prompt" jsonschema_description:"The combined and improved prompt."`
}

type taskResponse struct {
	Analysis string `json:"analysis" jsonschema_description:"Your step-by-step analysis of the prompt."`
	Task     string `json:"task" jsonschema_description:"The task the prompt is most likely used for."`
}

// schemaFor reflects a JSON schema from a response struct, inlined and with
// additional properties rejected, as strict structured-output modes require.
func schemaFor(v interface{}) *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""
	return schema
}

var (
	variantsSchema   = schemaFor(&variantsResponse{})
	evaluationSchema = schemaFor(&evaluationResponse{})
	crossoverSchema  = schemaFor(&crossoverResponse{})
	taskSchema       = schemaFor(&taskResponse{})
)

// openaiSchema adapts a reflected schema to the json.Marshaler value the
// OpenAI response_format field expects.
type openaiSchema struct {
	schema *jsonschema.Schema
}

func wrapSchema(s *jsonschema.Schema) *openaiSchema {
	return &openaiSchema{schema: s}
}

func (s *openaiSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.schema)
}

// mustMarshalSchema renders a schema as compact JSON for embedding in a
// system prompt. Reflection of package-level structs cannot fail.
func mustMarshalSchema(schema *jsonschema.Schema) string {
	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	return string(data)
}
