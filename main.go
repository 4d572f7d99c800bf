package main

import "github.com/sempr/localjudge/cmd"

func main() {
	cmd.Execute()
}
