package main

import "github.com/bryanchriswhite/RegionShot/cmd/regionshot/commands"

func main() {
	commands.Execute()
}
