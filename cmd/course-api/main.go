package main

import (
	"course-api/cmd/course-api/commands"
	"course-api/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
