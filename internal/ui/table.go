package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// MemberItem is one row of the room member table.
type MemberItem struct {
	Identifier string
	Note       string
}

// MemberTableView renders the current room members.
func MemberTableView(items []MemberItem) string {
	if len(items) == 0 {
		return MutedStyle.Render("No one else is here yet")
	}

	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), item.Identifier, item.Note})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Primary)).
		Headers("#", "Member", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableRowStyle
		})

	return tbl.Render()
}

// RenderMemberTable outputs the member table to stdout.
func RenderMemberTable(items []MemberItem) {
	fmt.Println(MemberTableView(items))
}

// RoomInfoView renders the boxed room banner shown after create/join.
func RoomInfoView(roomCode, identifier string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Success).
		Padding(1, 2)

	content := fmt.Sprintf("Room code:  %s\nYou are:    %s\n\n%s",
		BoldStyle.Foreground(Primary).Render(roomCode),
		BoldStyle.Render(identifier),
		MutedStyle.Render("type to chat · /mute /unmute · /quit to leave"),
	)
	return boxStyle.Render(content)
}

// RenderRoomInfo outputs the room banner to stdout.
func RenderRoomInfo(roomCode, identifier string) {
	fmt.Println(RoomInfoView(roomCode, identifier))
}
