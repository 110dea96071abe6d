package main

import "github.com/theakshaypant/dayview/cmd/dayview/cmd"

func main() {
	cmd.Execute()
}
