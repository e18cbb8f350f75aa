package main

import "github.com/gestaolite/backoffice/cmd"

func main() {
	cmd.Execute()
}
