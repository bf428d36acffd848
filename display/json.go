package display

import (
	"encoding/json"
	"flag"
)

// MarshalJSON marshals JSON with compact formatting for LLM environments,
// pretty formatting for human-readable output
func MarshalJSON(v interface{}) ([]byte, error) {
	// Tests always get pretty output so expectations stay stable
	if flag.Lookup("test.v") != nil {
		return json.MarshalIndent(v, "", "  ")
	}

	if IsLLMEnvironment() {
		result, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		// the prefix keeps tools from reformatting the payload
		return append([]byte("json:"), result...), nil
	}

	return json.MarshalIndent(v, "", "  ")
}
