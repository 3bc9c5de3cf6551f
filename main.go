package main

import "github.com/scooplog/scooplog/cmd"

func main() {
	cmd.Execute()
}
