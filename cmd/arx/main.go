// Arx is the command line front-end of the Arx language.
//
// Usage:
//
//	# Print the AST of a file
//	arx parse main.arx
//
//	# Same, as JSON, re-parsing whenever the file changes
//	arx parse main.arx --format json --watch
//
//	# Lower a file to LLVM IR
//	arx ir main.arx --output main.ll
//
//	# Start the interactive shell
//	arx shell
package main

func main() {
	Execute()
}
