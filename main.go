package main

import "github.com/frahmantamala/couture-bookkeeping/cmd"

func main() {
	cmd.Execute()
}
