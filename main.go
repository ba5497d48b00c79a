package main

import "github.com/Siddharth-Keer/Koe-Dashboard/cmd"

func main() {
	cmd.Execute()
}
