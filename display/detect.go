package display

import "os"

// CallerEnv set to "llm" forces machine-readable output.
const CallerEnv = "LOGIFACT_CALLER"

// IsLLMEnvironment reports whether output is likely read by an assistant
// rather than a person.
func IsLLMEnvironment() bool {
	if os.Getenv(CallerEnv) == "llm" {
		return true
	}
	for _, env := range []string{"CLAUDECODE", "CLAUDE_CODE_ENTRYPOINT", "CURSOR", "GITHUB_COPILOT"} {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}
