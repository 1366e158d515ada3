package main

import "fmt"

const banner = `
██╗  ██╗██╗   ██╗██████╗ ███████╗ ██████╗  █████╗ ████████╗███████╗
██║ ██╔╝██║   ██║██╔══██╗██╔════╝██╔════╝ ██╔══██╗╚══██╔══╝██╔════╝
█████╔╝ ██║   ██║██████╔╝█████╗  ██║  ███╗███████║   ██║   █████╗
██╔═██╗ ██║   ██║██╔══██╗██╔══╝  ██║   ██║██╔══██║   ██║   ██╔══╝
██║  ██╗╚██████╔╝██████╔╝███████╗╚██████╔╝██║  ██║   ██║   ███████╗
╚═╝  ╚═╝ ╚═════╝ ╚═════╝ ╚══════╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚══════╝`

// GetBanner returns the startup banner with the current version
func GetBanner() string {
	return fmt.Sprintf("%s\n  version %s\n", banner, version)
}
