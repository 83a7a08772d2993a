package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("getpurs %s\n", Version)
			fmt.Println("PureScript compiler installer")
			return
		case "install":
			if err := runInstall(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "status":
			if err := runStatus(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "init":
			if err := runInit(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("getpurs - PureScript compiler installer")
	fmt.Println()
	fmt.Println("Downloads a prebuilt purs binary for your platform, or builds the")
	fmt.Println("compiler from source with the Haskell stack toolchain when no usable")
	fmt.Println("prebuilt binary exists.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  getpurs --version            Show version information")
	fmt.Println("  getpurs install [options]    Install the PureScript compiler")
	fmt.Println("  getpurs status [options]     Show the state of an installed compiler")
	fmt.Println("  getpurs init [options]       Write a starter configuration file")
	fmt.Println()
	fmt.Println("Run 'getpurs <command> --help' for command options.")
}
