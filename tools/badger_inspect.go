package main

import (
	"chat-room/domain"
	"chat-room/repositories"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// Dumps the participants and the message history stored in a badger directory.
func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	requester := flag.String("as", "", "Only show messages visible to this participant")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	ctx := context.Background()
	logger := logs.GetLoggerFromLevel(slog.LevelWarn)

	participants, err := repositories.NewParticipantRepository(db, logger).List(ctx)
	if err != nil {
		log.Fatal("Error while listing participants: ", err)
	}
	table := newTable("Name", "Last seen", "Idle")
	now := time.Now()
	for _, p := range participants {
		table.Append([]string{p.Name, p.LastSeen.Local().Format(time.RFC3339), now.Sub(p.LastSeen).Truncate(time.Second).String()})
	}
	fmt.Printf("Participants (%d)\n", len(participants))
	table.Render()

	messageRepository := repositories.NewMessageRepository(db, logger)
	var messages []domain.Message
	if *requester == "" {
		messages, err = messageRepository.All(ctx)
	} else {
		messages, err = messageRepository.List(ctx, repositories.MessageFilter{Requester: *requester})
	}
	if err != nil {
		log.Fatal("Error while listing messages: ", err)
	}
	table = newTable("ID", "Time", "Type", "From", "To", "Text")
	for _, m := range messages {
		table.Append([]string{string(m.ID), m.Time, string(m.Type), m.From, m.To, m.Text})
	}
	fmt.Printf("\nMessages (%d)\n", len(messages))
	table.Render()
}

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
