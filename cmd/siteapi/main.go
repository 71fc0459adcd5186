package main

import "github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/cmd"

func main() {
	cmd.Execute()
}
