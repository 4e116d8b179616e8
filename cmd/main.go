// FilePath: cmd/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ayumine/cradlelog/internal/config"
	"github.com/ayumine/cradlelog/internal/server"
	tm "github.com/buger/goterm"
	nuts "github.com/vaudience/go-nuts"
)

func main() {
	// Clear console and draw logo
	ClearConsole()
	DrawLogo()
	// Initialize version info
	nuts.InitVersion()
	nuts.L.Infof("[Main] Starting CradleLog Tracker v%s", nuts.GetVersion())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create and start server
	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		nuts.L.Errorf("[Main] Server error: %v", err)
		os.Exit(1)
	}
}

// ClearConsole clears the console screen and draws the logo.
func ClearConsole() {
	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Flush()
}

func DrawLogo() {
	fmt.Println()
	lines := []string{
		"   ______              ____    __                ",
		"  / ____/________ ____/ / /__ / /   ____  ____ _ ",
		" / /   / ___/ __ `/ __  / / _ \\ /   / __ \\/ __ `/ ",
		"/ /___/ /  / /_/ / /_/ / /  __/ /__/ /_/ / /_/ /  ",
		"\\____/_/   \\__,_/\\__,_/_/\\___/____/\\____/\\__, /   ",
		"......................................../____/  " + nuts.GetVersion(),
	}

	for _, line := range lines {
		fmt.Println(line)
	}
}
