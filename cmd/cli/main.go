package main

import (
	"github.com/mchmarny/namedist/pkg/cli"
)

func main() {
	cli.Execute()
}
