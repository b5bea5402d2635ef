package kv

import (
	"fmt"

	"github.com/pbeckmann/fKV/rpc/wire"
	"github.com/spf13/cobra"
)

// printResponse renders a wire response in a stable, grep-friendly format
func printResponse(op string, resp *wire.Response) {
	fmt.Printf("%s: code=%d key=%q value=%q\n", op, resp.Code, resp.Key, resp.Value)
}

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]
			resp, err := rpcClient.Put(key, []byte(value))
			if err != nil {
				return err
			}
			printResponse("set", resp)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			resp, err := rpcClient.Get(key)
			if err != nil {
				return err
			}
			printResponse("get", resp)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			resp, err := rpcClient.Del(key)
			if err != nil {
				return err
			}
			printResponse("del", resp)
			return nil
		},
	}
	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Runs the canonical put/get/del sequence against the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			steps := []struct {
				op  string
				run func() (*wire.Response, error)
			}{
				{"put hello=world", func() (*wire.Response, error) { return rpcClient.Put("hello", []byte("world")) }},
				{"get hello", func() (*wire.Response, error) { return rpcClient.Get("hello") }},
				{"get world", func() (*wire.Response, error) { return rpcClient.Get("world") }},
				{"del hello", func() (*wire.Response, error) { return rpcClient.Del("hello") }},
				{"get hello", func() (*wire.Response, error) { return rpcClient.Get("hello") }},
			}
			for _, step := range steps {
				resp, err := step.run()
				if err != nil {
					return fmt.Errorf("%s: %w", step.op, err)
				}
				printResponse(step.op, resp)
			}
			return nil
		},
	}
)
