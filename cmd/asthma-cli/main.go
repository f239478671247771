package main

import (
	"asthma-pipeline/cmd/asthma-cli/commands"
	"asthma-pipeline/lib/util/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
