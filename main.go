package main

import "github.com/pbeckmann/fKV/cmd"

func main() {
	cmd.Execute()
}
