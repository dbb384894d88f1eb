package main

import "github.com/webbreaker/webinspect/cmd"

func main() {
	cmd.Execute()
}
