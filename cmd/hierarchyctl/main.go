// Command hierarchyctl inspects item hierarchies directly in the database:
// integrity sweeps, tree dumps and statistics.
package main

func main() {
	Execute()
}
