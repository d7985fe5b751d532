// Command crewgate is the terminal client for the Crewdesk HR platform.
package main

import "github.com/crewgate/crewgate/cmd/crewgate/cmd"

func main() {
	cmd.Execute()
}
