package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/olekukonko/tablewriter"
)

// Dumps the chat store from the command line. Opens read-only so it can run
// alongside a live server process.
func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "group:", "Prefix to scan (user:, group:, member:, msg:)")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Detail", "Timestamp"})
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

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Index entries carry no value worth decoding.
			key := string(item.Key())
			if strings.HasPrefix(key, "user:name:") || strings.HasPrefix(key, "usergroup:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				var record map[string]any
				if err := cbor.Unmarshal(v, &record); err != nil {
					fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
					return nil
				}

				table.Append([]string{
					key,
					strings.ToUpper(strings.SplitN(key, ":", 2)[0]),
					recordDetail(record),
					recordTimestamp(record),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}

func recordDetail(record map[string]any) string {
	for _, field := range []string{"username", "name", "text"} {
		if v, ok := record[field].(string); ok {
			return v
		}
	}
	if userID, ok := record["user_id"]; ok {
		return fmt.Sprintf("user %v", userID)
	}
	return "-"
}

func recordTimestamp(record map[string]any) string {
	for _, field := range []string{"registered_at", "created_at", "joined_at"} {
		switch ts := record[field].(type) {
		case int64:
			return time.Unix(0, ts).Format("15:04:05")
		case uint64:
			return time.Unix(0, int64(ts)).Format("15:04:05")
		}
	}
	return "--:--:--"
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)

	return badger.Open(opts)
}
