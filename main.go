package main

import "github.com/mfellner/rosapi/cmd"

func main() {
	cmd.Execute()
}
