package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FarhadNuri/VC/internal/config"
	"github.com/FarhadNuri/VC/internal/ui"
)

var (
	flagJoinServer   string
	flagJoinSTUN     string
	flagJoinTURN     string
	flagJoinTURNUser string
	flagJoinTURNPass string
)

var joinCmd = &cobra.Command{
	Use:     "join <room-code>",
	Aliases: []string{"j"},
	Short:   "Join an existing voice room",
	Long: `Join a voice room by its code. Codes are case-insensitive.

Examples:
  vc join AB12C
  vc join ab12c --server ws://myhost:8080/ws`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinRoom(args[0])
	},
}

func joinRoom(code string) error {
	s, err := newRoomSession(config.Options{
		ServerURL:  flagJoinServer,
		STUNServer: flagJoinSTUN,
		TURNServer: flagJoinTURN,
		TURNUser:   flagJoinTURNUser,
		TURNPass:   flagJoinTURNPass,
	})
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.joinRoom(code)
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	fmt.Println()
	ui.RenderRoomInfo(resp.RoomCode, resp.Identifier)

	members := make([]ui.MemberItem, 0, len(resp.Members))
	for _, m := range resp.Members {
		members = append(members, ui.MemberItem{Identifier: m.Identifier})
	}
	ui.RenderMemberTable(members)

	return s.run()
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVar(&flagJoinServer, "server", "", "Signaling server URL")
	joinCmd.Flags().StringVarP(&flagJoinSTUN, "stun", "s", "", "Custom STUN server")
	joinCmd.Flags().StringVarP(&flagJoinTURN, "turn", "t", "", "Custom TURN server")
	joinCmd.Flags().StringVar(&flagJoinTURNUser, "turn-user", "", "TURN username")
	joinCmd.Flags().StringVar(&flagJoinTURNPass, "turn-pass", "", "TURN password")
}
