package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

// inspect dumps the hub store, one row per key, for debugging a local database.
func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	prefix := flag.String("prefix", "chat:", "Prefix to scan (chat:, member:, userchat:, msg:, msgid:, profile:)")
	limit := flag.Int("limit", 100, "Maximum number of rows")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithReadOnly(true).WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Value"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes) && rows < *limit; it.Next() {
			item := it.Item()
			key := string(item.Key())
			kind, _, _ := strings.Cut(key, ":")
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			table.Append([]string{key, color.FgCyan.Render(kind), describe(kind, value)})
			rows++
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}
	table.Render()
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf(" %d row(s) under %q ", rows, *prefix)))
}

// describe renders a value: msgid entries hold a raw key, userchat entries
// are empty, every other entry is a cbor record.
func describe(kind string, value []byte) string {
	switch {
	case len(value) == 0:
		return "-"
	case kind == "msgid":
		return string(value)
	}
	var record map[string]any
	if err := cbor.Unmarshal(value, &record); err != nil {
		return fmt.Sprintf("<undecodable: %v>", err)
	}
	return fmt.Sprint(record)
}
