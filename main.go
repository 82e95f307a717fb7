package main

import "webopt/cmd"

func main() {
	cmd.Execute()
}
