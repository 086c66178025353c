package main

import "github.com/productdevbook/portkiller/cmd"

func main() {
	cmd.Execute()
}
