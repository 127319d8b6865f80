package main

import "github.com/milden6/ahocorasick/cmd/acsearch/cmd"

func main() {
	cmd.Execute()
}
