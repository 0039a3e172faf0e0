package main

import "github.com/wangdayong228/envr/cmd"

func main() {
	cmd.Execute()
}
