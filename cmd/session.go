package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/FarhadNuri/VC/internal/config"
	"github.com/FarhadNuri/VC/internal/logging"
	"github.com/FarhadNuri/VC/internal/media"
	"github.com/FarhadNuri/VC/internal/peer"
	"github.com/FarhadNuri/VC/internal/protocol"
	"github.com/FarhadNuri/VC/internal/session"
	"github.com/FarhadNuri/VC/internal/ui"
)

var (
	errDisconnected = errors.New("disconnected from server")
	errRoomNotFound = errors.New("room not found")
	errRoomFull     = errors.New("room is full")
	errServerFailed = errors.New("server could not complete the request")
)

// roomSession bundles everything one room membership needs: the
// websocket client, the peer orchestrator over the media engine, and
// the shared microphone source.
type roomSession struct {
	cfg     *config.Config
	client  *session.Client
	handler *session.Handler
	orch    *peer.Orchestrator
	mic     *media.Mic
	log     zerolog.Logger
}

// newRoomSession connects to the server and wires the client stack.
func newRoomSession(opts config.Options) (*roomSession, error) {
	cfg := config.Load(opts)
	log := logging.NewConsole()

	mic, err := media.NewMic()
	if err != nil {
		return nil, fmt.Errorf("create audio source: %w", err)
	}
	engine := media.NewEngine(media.ICEConfig{
		STUNServers: cfg.STUNServers(),
		TURNServers: cfg.TURNServers(),
		TURNUser:    cfg.TURNUser,
		TURNPass:    cfg.TURNPass,
	}, mic, log)

	client := session.NewClient(cfg.ServerURL)
	orch := peer.New(client, engine, log)
	handler := session.NewHandler(client, orch, session.Events{
		OnChat: ui.PrintChat,
		OnJoined: func(identifier string) {
			ui.PrintStatus(identifier + " joined")
		},
		OnLeft: func(identifier string) {
			ui.PrintStatus(identifier + " left")
		},
	}, log)

	stopSpinner := ui.RunConnectionSpinner("Connecting to server...")
	err = client.Connect()
	stopSpinner()
	if err != nil {
		return nil, err
	}
	go handler.Start()

	return &roomSession{
		cfg:     cfg,
		client:  client,
		handler: handler,
		orch:    orch,
		mic:     mic,
		log:     log,
	}, nil
}

func (s *roomSession) createRoom() (*protocol.Message, error) {
	s.client.Send(&protocol.Message{Kind: protocol.KindCreateRoom})
	return s.awaitResponse(s.handler.RoomCreated)
}

func (s *roomSession) joinRoom(code string) (*protocol.Message, error) {
	s.client.Send(&protocol.Message{Kind: protocol.KindJoinRoom, RoomCode: code})
	return s.awaitResponse(s.handler.RoomJoined)
}

func (s *roomSession) awaitResponse(ch <-chan *protocol.Message) (*protocol.Message, error) {
	select {
	case msg := <-ch:
		return msg, nil
	case code := <-s.handler.Errors:
		switch code {
		case protocol.ErrCodeRoomNotFound:
			return nil, errRoomNotFound
		case protocol.ErrCodeRoomFull:
			return nil, errRoomFull
		}
		return nil, errServerFailed
	case <-s.handler.Done:
		return nil, errDisconnected
	}
}

// run is the interactive room loop: stdin lines are chat, slash
// commands control the shared microphone, /quit leaves.
func (s *roomSession) run() error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-s.handler.Done:
			ui.PrintStatus("Disconnected")
			return nil

		case line, ok := <-lines:
			if !ok {
				s.leave()
				return nil
			}
			line = strings.TrimSpace(line)
			switch line {
			case "":
			case "/quit":
				s.leave()
				return nil
			case "/mute":
				s.mic.SetLive(false)
				ui.PrintStatus("Muted")
			case "/unmute":
				s.mic.SetLive(true)
				ui.PrintStatus("Mic open")
			default:
				s.client.Send(&protocol.Message{
					Kind: protocol.KindSendMessage,
					Text: line,
				})
			}
		}
	}
}

func (s *roomSession) leave() {
	s.client.Send(&protocol.Message{Kind: protocol.KindLeaveRoom})
	ui.PrintStatus("Left the room")
}

func (s *roomSession) close() {
	s.orch.Close()
	s.client.Close()
}
