package main

import "janusops/cmd"

func main() {
	cmd.Execute()
}
