package main

import (
	"github.com/slacklinehq/slackline/cmd"
)

func main() {
	cmd.Execute()
}
