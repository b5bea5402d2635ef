package cmd

import (
	"fmt"
	"os"

	"github.com/pbeckmann/fKV/cmd/kv"
	"github.com/pbeckmann/fKV/cmd/serve"
	"github.com/pbeckmann/fKV/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.4.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "fkv",
		Short: "framed key-value store",
		Long: fmt.Sprintf(`fKV (v%s)

A networked key-value store written in Go, speaking a length-framed,
protobuf-encoded request/response protocol over TCP, Unix sockets or
WebSockets.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fKV",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fKV v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix, ws)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
