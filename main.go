package main

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-pipeline-composer/cmd"
	"github.com/deploymenttheory/go-pipeline-composer/pkg/tooling"
)

func main() {
	err := cmd.Execute()

	// Ensure logs are flushed before exit
	_ = tooling.Shutdown()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
