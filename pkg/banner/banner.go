package banner

import (
	"fmt"

	"chatportal/pkg/config"
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗    ██████╗  ██████╗ ██████╗ ████████╗ █████╗ ██╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝    ██╔══██╗██╔═══██╗██╔══██╗╚══██╔══╝██╔══██╗██║
██║     ███████║███████║   ██║       ██████╔╝██║   ██║██████╔╝   ██║   ███████║██║
██║     ██╔══██║██╔══██║   ██║       ██╔═══╝ ██║   ██║██╔══██╗   ██║   ██╔══██║██║
╚██████╗██║  ██║██║  ██║   ██║       ██║     ╚██████╔╝██║  ██║   ██║   ██║  ██║███████╗
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝       ╚═╝      ╚═════╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝
`

// Print writes the startup banner with the effective runtime settings.
func Print(eff *config.Effective, dbPath, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", eff.Addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", eff.Source)
	if eff.Config.LLM.BaseURL != "" {
		fmt.Printf("Gateway:  %s (model %s)\n", eff.Config.LLM.BaseURL, eff.Config.LLM.Model)
	} else {
		fmt.Println("Gateway:  not configured - replies will degrade to error text")
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("POST /api/conversations                    - Create a conversation")
	fmt.Println("POST /api/conversations/{id}/messages      - Send a message, get the AI reply")
	fmt.Println("POST /api/conversations/{id}/end           - End and summarize")
	fmt.Println("POST /api/conversations/query              - Ask about past conversations")
	fmt.Println("POST /api/conversations/{id}/export        - Export as json, markdown or pdf")
}
