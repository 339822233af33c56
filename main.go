package main

import "github.com/jcdickinson/lovvelger/cmd"

func main() {
	cmd.Execute()
}
