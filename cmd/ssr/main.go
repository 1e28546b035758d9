package main

import (
	cmd "github.com/rohmanhakim/ssr-renderer/internal/cli"
)

func main() {
	cmd.Execute()
}
