// murphy CLI - fault injection for HTTP traffic
package main

import "github.com/getmockd/murphy/pkg/cli"

func main() {
	cli.Execute()
}
