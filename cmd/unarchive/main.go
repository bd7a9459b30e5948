// Copyright IBM Corp. 2023, 2025

package main

import "github.com/hashicorp/go-unarchive/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main start go-unarchive cli `unarchive`
func main() {
	cmd.Run(version, commit, date)
}
