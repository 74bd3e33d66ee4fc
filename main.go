package main

import "github.com/killallgit/liftchat/cmd"

func main() {
	cmd.Execute()
}
