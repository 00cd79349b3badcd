package main

import "github.com/dalijon-byte/LLM-ComputerUse/cmd"

func main() {
	cmd.Execute()
}
