package main

import "github.com/gaurav-prasanna/flaremd/cmd"

func main() {
	cmd.Execute()
}
