package main

import (
	"os"

	"contact-picker/internal/cli"
	"contact-picker/internal/logger"
)

func main() {
	cmd := cli.NewRootCmd()
	err := cmd.Execute()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
