package utils

import (
	"os"
	"strings"
)

// ExecutableName returns the name the binary was invoked as
func ExecutableName() string {
	executable, err := os.Executable()
	if err != nil {
		return "matrixpush"
	}

	parts := strings.Split(executable, string(os.PathSeparator))

	return parts[len(parts)-1]
}
