package main

import (
	"log"
)

// Build metadata injected at compile time through ldflags.
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title School Library API
// @version 1.0
// @description REST backend to catalog books, record loans & returns and bulk-import inventory.
// @contact.name API Support
// @BasePath /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
