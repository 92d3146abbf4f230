package main

import "github.com/ecglab/recstore/cmd"

func main() {
	cmd.Execute()
}
