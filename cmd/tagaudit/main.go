package main

import (
	"tagaudit/cmd/tagaudit/commands"
	"tagaudit/pkg/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
