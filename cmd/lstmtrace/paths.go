package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samcharles93/lstmtrace/internal/trace"
)

const (
	defaultInput  = "hw_results.csv"
	defaultOutput = "hw_vs_float_comparison.csv"
)

func resolveInput(arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return defaultInput
	}
	return filepath.Clean(arg)
}

// resolveOutput returns the output path for a single comparison. The default
// name takes the extension of format.
func resolveOutput(outFlag string, format trace.Format) string {
	outFlag = strings.TrimSpace(outFlag)
	if outFlag != "" {
		return filepath.Clean(outFlag)
	}
	return withExt(defaultOutput, format)
}

// batchOutput places the comparison for input in dir as
// <name>_comparison.<ext>. An empty dir writes next to the input.
func batchOutput(dir, input string, format trace.Format) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + "_comparison.csv"
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, withExt(base, format))
}

// batchOutputs resolves the output path of every input. Inputs whose
// default outputs would collide are prefixed with their parent directory
// name, and any path still shared gets the input's 1-based position
// appended, so no two inputs ever write the same file.
func batchOutputs(dir string, inputs []string, format trace.Format) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = batchOutput(dir, in, format)
	}
	for _, idx := range collisions(out) {
		in := inputs[idx]
		parent := filepath.Base(filepath.Dir(filepath.Clean(in)))
		if parent == "." || parent == string(filepath.Separator) {
			continue
		}
		name := filepath.Base(out[idx])
		out[idx] = filepath.Join(filepath.Dir(out[idx]), parent+"_"+name)
	}
	for _, idx := range collisions(out) {
		ext := filepath.Ext(out[idx])
		out[idx] = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(out[idx], ext), idx+1, ext)
	}
	return out
}

// collisions returns the indexes of paths shared by more than one entry.
func collisions(paths []string) []int {
	count := make(map[string]int, len(paths))
	for _, p := range paths {
		count[p]++
	}
	var idx []int
	for i, p := range paths {
		if count[p] > 1 {
			idx = append(idx, i)
		}
	}
	return idx
}

func withExt(path string, format trace.Format) string {
	if format != trace.FormatJSON {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}
