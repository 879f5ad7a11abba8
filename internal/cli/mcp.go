// mcp.go implements "execmind mcp", the MCP stdio server.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/execmind/execmind/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve assistant responses and pending actions over MCP stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	svc, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.serveMetrics(cmd.Context())

	s := mcpserver.New(&mcpserver.Handlers{
		Actions:      svc.actions,
		MeetingTitle: svc.cfg.MeetingTitle,
		Log:          svc.log,
		OnToggle:     svc.metrics.ActionToggled,
	}, version)

	svc.log.Info().Str("version", version).Msg("mcp server starting")
	return mcpserver.ServeStdio(s)
}
