// Command cw-sslcheck checks the leaf TLS certificates of HTTPS URLs.
package main

import (
	"fmt"
	"os"

	"github.com/certwatch-app/cw-sslcheck/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
