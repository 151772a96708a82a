/*
Copyright 2018 Craig Johnston <cjimti@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/txn2/parrot/cmd/parrot/mcp"
	"github.com/txn2/parrot/cmd/parrot/serve"
	"github.com/txn2/parrot/cmd/parrot/version"
	"github.com/txn2/parrot/cmd/parrot/watch"
)

var globalUsage = `Show who is talking on a digital voice repeater.

parrot follows the repeater's MMDVM and gateway logs, either directly or
through a remote "parrot serve" log server, and displays the most recent
call, its source, the linked room and a running call history.`

var Version = "0.0.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parrot",
		Short: "Repeater call display.",
		Long:  globalUsage,
	}

	version.Version = Version
	watch.Version = Version
	serve.Version = Version
	mcp.Version = Version

	cmd.AddCommand(version.Cmd, watch.Cmd, serve.Cmd, mcp.Cmd)

	return cmd
}

func main() {
	cmd := newRootCmd()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
