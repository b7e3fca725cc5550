package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
)

// Console glyphs degrade to plain text markers on Windows, where terminal
// emoji support is unreliable.
func glyph(unicode, plain string) string {
	if runtime.GOOS == "windows" {
		return plain
	}
	return unicode
}

func printSuccess(format string, args ...any) {
	fmt.Printf("%s %s\n", color.GreenString(glyph("✓", "[OK]")), fmt.Sprintf(format, args...))
}

func printWarn(format string, args ...any) {
	fmt.Printf("%s %s\n", color.YellowString(glyph("⚠", "[WARN]")), fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Printf("%s %s\n", color.RedString(glyph("✗", "[ERROR]")), fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("%s %s\n", color.CyanString(glyph("ℹ", "[INFO]")), fmt.Sprintf(format, args...))
}
