package banner

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"nebula/pkg/config"
	"nebula/pkg/store"
)

const banner = `
███╗   ██╗███████╗██████╗ ██╗   ██╗██╗      █████╗
████╗  ██║██╔════╝██╔══██╗██║   ██║██║     ██╔══██╗
██╔██╗ ██║█████╗  ██████╔╝██║   ██║██║     ███████║
██║╚██╗██║██╔══╝  ██╔══██╗██║   ██║██║     ██╔══██║
██║ ╚████║███████╗██████╔╝╚██████╔╝███████╗██║  ██║
╚═╝  ╚═══╝╚══════╝╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═╝
`

// Print writes the startup banner with the effective runtime settings.
func Print(cfg *config.Config, source, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", cfg.Addr())
	fmt.Printf("DB Path:  %s (%s on disk)\n", cfg.Server.DBPath, humanize.Bytes(store.DiskUsage()))
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if source != "" {
		fmt.Printf("Config:   %s\n", source)
	}
	if cfg.Gateway.APIKey != "" {
		fmt.Printf("Gateway:  %s (key set)\n", cfg.Gateway.Model)
	} else {
		fmt.Printf("Gateway:  %s (NO API KEY - set GOOGLE_API_KEY)\n", cfg.Gateway.Model)
	}
	if cfg.Retention.Enabled {
		fmt.Printf("Archive:  enabled (cron=%s period=%s)\n", cfg.Retention.Cron, cfg.Retention.Period)
	} else {
		fmt.Println("Archive:  disabled")
	}

	fmt.Println("\n== Examples ===================================================")
	fmt.Printf("curl -X POST 'http://localhost%s/v1/session/messages' -d '{\"text\": \"hello\"}'\n", cfg.Addr())
	fmt.Printf("curl 'http://localhost%s/v1/chats?filter=pinned&sort=date'\n", cfg.Addr())

	fmt.Println("\n== Logs: =================================================")
}
