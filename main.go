package main

import "github.com/ridoystarlord/apdbschema/cmd"

func main() {
	cmd.Execute()
}
