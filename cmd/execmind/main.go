// Command execmind runs the executive dashboard.
package main

import "github.com/execmind/execmind/internal/cli"

func main() {
	cli.Execute()
}
