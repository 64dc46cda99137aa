package logger

import (
	"fmt"
	"time"
)

// ANSI color codes. Terminals that don't support them just print the escapes;
// acceptable for a developer tool.
const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
	bold   = "\033[1m"
)

func stamp() string {
	return time.Now().Format("15:04:05")
}

// Info prints an informational message with a tag.
func Info(tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s\n", gray, stamp(), reset, cyan, tag, reset, msg)
}

// Success prints a success message with a tag.
func Success(tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s\n", gray, stamp(), reset, green, tag, reset, msg)
}

// Warn prints a warning message with a tag.
func Warn(tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s\n", gray, stamp(), reset, yellow, tag, reset, msg)
}

// Error prints an error message with a tag.
func Error(tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s\n", gray, stamp(), reset, red, tag, reset, msg)
}

// Section prints a section divider.
func Section(title string) {
	fmt.Printf("\n%s── %s %s\n", bold, title, reset)
}

// Stats prints a key/value statistic line.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s%-24s%s %v\n", gray, key, reset, value)
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%seve-craftcost%s %s%s%s\n", bold, cyan, reset, gray, version, reset)
}
