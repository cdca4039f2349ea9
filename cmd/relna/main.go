// Command relna tags transcription factors in biomedical text, either
// over a dataset file or as an HTTP service.
package main

import (
	"github.com/ashishbaghudana/relna/internal/interfaces/cli"
)

// Injected at build time via -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = gitCommit
	cli.BuildDate = buildDate

	cli.ExitOnError(cli.Execute())
}
