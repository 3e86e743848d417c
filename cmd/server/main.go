package main

import (
	"flag"
	"fmt"
	"os"

	_ "meetflow/internal/docs"

	"meetflow/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
)

// @title Meetflow API
// @version 1.0
// @description Job orchestration API for transcription, diarization, alignment, and export of meeting recordings.
// @BasePath /api/v1
func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("meetflow %s (%s)\n", version, commit)
		os.Exit(0)
	}

	cli.Execute()
}
