package main

import "github.com/hochfrequenz/transformerbee-mcp/cmd/transformerbee-mcp/cmd"

func main() {
	cmd.Execute()
}
