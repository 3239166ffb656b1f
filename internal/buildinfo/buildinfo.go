// Package buildinfo exposes version details stamped at link time.
//
// The variables are meant to be overridden via -ldflags, e.g.:
//
//	go build -ldflags "-X github.com/snipperhq/snipper-cli/internal/buildinfo.buildVersion=v1.2.0 \
//	  -X 'github.com/snipperhq/snipper-cli/internal/buildinfo.buildDate=$(date -u +%Y-%m-%d)' \
//	  -X github.com/snipperhq/snipper-cli/internal/buildinfo.buildCommit=$(git rev-parse --short HEAD)"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion = "N/A"
	buildDate    = "N/A"
	buildCommit  = "N/A"
)

// PrintBuildData writes the stamped build version, date and commit to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", buildVersion)
	fmt.Fprintf(w, "Build date: %s\n", buildDate)
	fmt.Fprintf(w, "Build commit: %s\n", buildCommit)
}
