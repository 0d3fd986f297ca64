package main

import "github.com/loamworks/loam/cmd"

func main() {
	cmd.Execute()
}
