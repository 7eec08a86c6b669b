package main

import "github.com/naka-gawa/repo-catalog/cmd"

func main() {
	cmd.Execute()
}
