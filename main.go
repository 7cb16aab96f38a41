package main

import "github.com/Time0o/TUD-channel-coding/cmd"

func main() {
	cmd.Execute()
}
