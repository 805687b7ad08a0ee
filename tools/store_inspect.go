package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"

	"pairchat/domain"
)

// Read-only dump of the store tree. Opens the database alongside a
// running session thanks to BypassLockGuard.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "", "Only show paths under this prefix")
	flag.Parse()

	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := fmt.Sprintf(" pairchat store @ %s ", *dbPath)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Path", "Kind", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			path := string(item.Key())
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			kind, detail := describe(path, value)
			table.Append([]string{path, kind, detail})
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func describe(path string, value []byte) (string, string) {
	switch {
	case path == domain.CounterPath:
		return "COUNTER", string(value)
	case strings.HasPrefix(path, "profiles/"):
		var p domain.Profile
		if err := json.Unmarshal(value, &p); err != nil {
			return "PROFILE", "<undecodable>"
		}
		return "PROFILE", fmt.Sprintf("%s (#%s)", p.DisplayName, p.NumericID)
	case strings.HasPrefix(path, "ids/"):
		return "ID_INDEX", string(value)
	case strings.Contains(path, "/conversations/"):
		var c domain.Conversation
		if err := json.Unmarshal(value, &c); err != nil {
			return "CONVERSATION", "<undecodable>"
		}
		return "CONVERSATION", fmt.Sprintf("with %s: %q at %s",
			c.With.DisplayName, c.LastMessage, c.LastTime.Format("15:04:05"))
	case strings.Contains(path, "/friends/"):
		return "FRIEND", string(value)
	case strings.Contains(path, "/messages/"):
		var m domain.Message
		if err := json.Unmarshal(value, &m); err != nil {
			return "MESSAGE", "<undecodable>"
		}
		return "MESSAGE", fmt.Sprintf("%s: %q", m.From, m.Text)
	}
	return "RAW", fmt.Sprintf("%d bytes", len(value))
}
