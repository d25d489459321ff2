package main

import "github.com/atikulmunna/logreader/internal/cmd"

func main() {
	cmd.Execute()
}
