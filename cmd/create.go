package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FarhadNuri/VC/internal/config"
	"github.com/FarhadNuri/VC/internal/ui"
)

var (
	flagCreateServer   string
	flagCreateSTUN     string
	flagCreateTURN     string
	flagCreateTURNUser string
	flagCreateTURNPass string
)

var createCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"c"},
	Short:   "Create a voice room and wait for others",
	Long: `Create a new voice room. The room code printed on success is what
others use to join.

Examples:
  vc create
  vc create --server ws://myhost:8080/ws`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createRoom()
	},
}

func createRoom() error {
	s, err := newRoomSession(config.Options{
		ServerURL:  flagCreateServer,
		STUNServer: flagCreateSTUN,
		TURNServer: flagCreateTURN,
		TURNUser:   flagCreateTURNUser,
		TURNPass:   flagCreateTURNPass,
	})
	if err != nil {
		return err
	}
	defer s.close()

	resp, err := s.createRoom()
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	fmt.Println()
	ui.RenderRoomInfo(resp.RoomCode, resp.Identifier)
	return s.run()
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&flagCreateServer, "server", "", "Signaling server URL")
	createCmd.Flags().StringVarP(&flagCreateSTUN, "stun", "s", "", "Custom STUN server")
	createCmd.Flags().StringVarP(&flagCreateTURN, "turn", "t", "", "Custom TURN server")
	createCmd.Flags().StringVar(&flagCreateTURNUser, "turn-user", "", "TURN username")
	createCmd.Flags().StringVar(&flagCreateTURNPass, "turn-pass", "", "TURN password")
}
