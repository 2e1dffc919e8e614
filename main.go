// ./main.go
package main

import (
	"github.com/xkilldash9x/labelpilot/cmd"
)

func main() {
	cmd.Execute()
}
