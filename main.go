package main

import "github.com/FarhadNuri/VC/cmd"

func main() {
	cmd.Execute()
}
