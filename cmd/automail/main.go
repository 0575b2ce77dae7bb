package main

import "github.com/automail/analytics-pipeline/internal/cli"

func main() {
	cli.Execute()
}
