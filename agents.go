package sage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	models "github.com/sagechat/sage/models"
)

// Model is a completion provider. Implementations translate the transcript
// and tool declarations into one provider call and map the reply back into a
// Model_Response. A reply the provider cannot parse into parts degrades to a
// plain text response rather than an error.
type Model interface {
	Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (models.Model_Response, error)
	Stream_Model_Request(transcript []models.Message, tools []models.FunctionDeclaration, model string) (<-chan models.Model_Response, <-chan error)
}

// Agent pairs a completion provider with the tools the model may call.
type Agent struct {
	Model  Model
	Tools  []models.FunctionDeclaration
	Logger *log.Logger
}

// Create_Agent builds an agent over the given model and toolset.
func Create_Agent(model Model, tools []models.FunctionDeclaration) Agent {
	return Agent{
		Model:  model,
		Tools:  tools,
		Logger: log.New(os.Stdout, "[AGENT] ", log.LstdFlags),
	}
}

// filterTools returns the declarations enabled by opts. A nil EnabledTools
// list means every registered tool.
func (agent *Agent) filterTools(opts models.GenerateOptions) []models.FunctionDeclaration {
	if opts.EnabledTools == nil {
		return agent.Tools
	}
	var tools []models.FunctionDeclaration
	for _, tool := range agent.Tools {
		if opts.ToolEnabled(tool.Name) {
			tools = append(tools, tool)
		}
	}
	return tools
}

// ExecuteTool executes a tool dynamically by name and arguments
func (agent *Agent) ExecuteTool(functionName string, functionCallArgs map[string]interface{}) (string, error) {
	var tool *models.FunctionDeclaration
	for i := range agent.Tools {
		if agent.Tools[i].Name == functionName {
			tool = &agent.Tools[i]
			break
		}
	}
	if tool == nil {
		return toolErrorJSON(fmt.Errorf("unknown or unavailable tool: %s", functionName))
	}

	callableFunc := reflect.ValueOf(tool.Callable)
	if callableFunc.Kind() != reflect.Func {
		return toolErrorJSON(fmt.Errorf("internal error: tool '%s' is not callable", functionName))
	}
	funcType := callableFunc.Type()
	// Validate signature: func(string) (string, error)
	if !(funcType.NumIn() == 1 && funcType.In(0).Kind() == reflect.String &&
		funcType.NumOut() == 2 && funcType.Out(0).Kind() == reflect.String &&
		funcType.Out(1).Implements(reflect.TypeOf((*error)(nil)).Elem())) {
		return toolErrorJSON(fmt.Errorf("internal error: tool '%s' has incompatible signature", functionName))
	}

	// The model supplies exactly one string argument; the key name is
	// whatever the declaration's schema calls it.
	if len(functionCallArgs) != 1 {
		return toolErrorJSON(fmt.Errorf("tool '%s' expects 1 argument from model, got %d args: %v", functionName, len(functionCallArgs), functionCallArgs))
	}
	var stringArg string
	for argName, argValue := range functionCallArgs {
		s, ok := argValue.(string)
		if !ok {
			return toolErrorJSON(fmt.Errorf("invalid argument type for '%s': expected string for arg '%s', got %T", functionName, argName, argValue))
		}
		stringArg = s
	}

	results := callableFunc.Call([]reflect.Value{reflect.ValueOf(stringArg)})
	if errResult := results[1].Interface(); errResult != nil {
		execErr, ok := errResult.(error)
		if !ok {
			execErr = fmt.Errorf("internal error: tool '%s' returned invalid error type", functionName)
		}
		return toolErrorJSON(execErr)
	}

	output, ok := results[0].Interface().(string)
	if !ok {
		return toolErrorJSON(fmt.Errorf("internal error: tool '%s' returned non-string result", functionName))
	}
	// An empty result reads like silence to the model; make the absence
	// explicit instead.
	if strings.TrimSpace(output) == "" {
		output = "No information found for this query"
	}
	resultBytes, err := json.Marshal(map[string]string{"result": output})
	if err != nil {
		return toolErrorJSON(fmt.Errorf("failed marshal result for '%s': %v", functionName, err))
	}
	return string(resultBytes), nil
}

// toolErrorJSON wraps err in the standard tool result envelope and returns
// the same error so callers can both report it and feed the JSON back to the
// model.
func toolErrorJSON(err error) (string, error) {
	errorBytes, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(errorBytes), err
}
