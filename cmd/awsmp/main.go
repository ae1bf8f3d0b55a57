// awsmp manages AWS Marketplace AMI product listings from declarative
// local configuration.
package main

import "github.com/canonical/awsmp/cmd/awsmp/cmd"

// Build information. Populated at build-time via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
