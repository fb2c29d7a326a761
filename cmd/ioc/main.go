// Command ioc inspects and validates container definition files.
//
//	ioc tree -f config/container.yaml
//	ioc resolve -f config/container.yaml --namespace mail transport
//	ioc validate -f config/container.yaml
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.New(color.FgRed, color.Bold).Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}
