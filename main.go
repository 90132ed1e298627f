package main

import "github.com/rasnes/marketdash-etl/cmd"

func main() {
	cmd.Execute()
}
