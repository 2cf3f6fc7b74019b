package main

import "courseops/internal/cmd"

func main() {
	cmd.Execute()
}
