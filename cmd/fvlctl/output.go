package main

import (
	"encoding/json"
	"fmt"

	"github.com/finvault/fvl/internal/logx"
)

// printResult renders a successful response per §6's "--json emits
// machine-parseable output" rule; text mode pretty-prints the same map.
func printResult(v map[string]any) {
	if jsonOutput {
		b, _ := json.Marshal(v)
		fmt.Println(string(b))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func errLine(err error) string {
	if ae, ok := err.(*apiError); ok {
		if jsonOutput {
			b, _ := json.Marshal(map[string]any{"error": map[string]any{"kind": ae.kind, "message": ae.message}})
			return string(b)
		}
		return logx.ErrorLine(ae.kind, ae.message)
	}
	if jsonOutput {
		b, _ := json.Marshal(map[string]any{"error": map[string]any{"kind": "IoFailure", "message": err.Error()}})
		return string(b)
	}
	return logx.ErrorLine("IoFailure", err.Error())
}

// exitCodeFor implements §6's exit codes: 0 success, 1 user error, 2
// internal error.
func exitCodeFor(err error) int {
	if ae, ok := err.(*apiError); ok && ae.userError() {
		return 1
	}
	return 2
}
