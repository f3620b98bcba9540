package main

import (
	"fmt"
	"os"
	"strings"
)

func debugLog(format string, a ...any) {
	if !Debug {
		return
	}
	msg := fmt.Sprintf(format, a...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(os.Stderr, "[wp-export] %s", msg)
}

