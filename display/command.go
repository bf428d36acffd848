// Package display decides between human and machine-readable command
// output.
package display

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teranos/logifact/errors"
)

// ShouldOutputJSON determines if a command should output JSON based on flags and LLM detection
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return IsLLMEnvironment()
	}

	if cmd.Flags().Lookup("json") != nil && cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	return IsLLMEnvironment()
}

// OutputJSON marshals v with MarshalJSON and writes it to w.
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
