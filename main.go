package main

import "github.com/sji-bdl/bdlimport/cmd"

func main() {
	cmd.Execute()
}
