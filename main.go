package main

import "github.com/mcpherd/mcpherd/cmd"

func main() {
	cmd.Execute()
}
