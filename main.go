package main

import "github.com/deploymenttheory/go-dex/cmd"

func main() {
	cmd.Execute()
}
