package optim

import "regexp"

var outputSuffix = regexp.MustCompile(`^(.*):\d+$`)

// VariableName strips a trailing ":<digits>" output suffix, so that
// "layer/kernel:0" and "layer/kernel" name the same variable.
func VariableName(name string) string {
	if m := outputSuffix.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return name
}
