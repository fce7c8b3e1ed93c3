package main

import "github.com/sqlsage/sqlsage/internal/cli"

func main() {
	cli.Execute()
}
