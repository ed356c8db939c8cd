package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// row is one stored record, decoded as far as its key prefix allows.
type row struct {
	Key, Type, Timestamp, Entity, Detail string
}

func main() {
	_ = godotenv.Load()
	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	prefix := flag.String("prefix", "event:", "Prefix to scan (event:, reg:, reg_user:, reg_count:, msg:, user:, user_email:)")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("No database path: set -db or BADGER_FILEPATH")
	}
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Entity", "Detail"})
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
			key := string(item.Key())
			err := item.Value(func(v []byte) error {
				r := mapRow(key, v)
				table.Append([]string{r.Key, r.Type, r.Timestamp, r.Entity, r.Detail})
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

func mapRow(key string, val []byte) row {
	r := row{Key: key, Type: "RAW", Timestamp: "-", Entity: "-", Detail: "Size: " + strconv.Itoa(len(val)) + " bytes"}
	kind, rest, _ := strings.Cut(key, ":")

	var fields map[string]any
	decoded := json.Unmarshal(val, &fields) == nil

	switch kind {
	case "event":
		r.Type = "EVENT"
		r.Entity = shorten(rest)
		if decoded {
			r.Timestamp = nanos(fields["date"])
			r.Detail = fmt.Sprintf("%v @ %v (%v)", fields["name"], fields["location"], fields["category"])
		}
	case "reg", "reg_user":
		r.Type = "REGISTRATION"
		r.Entity = rest
		if decoded {
			r.Timestamp = nanos(fields["at"])
		}
	case "reg_count":
		r.Type = "SEATS"
		r.Entity = shorten(rest)
		r.Detail = string(val)
	case "msg":
		r.Type = "MESSAGE"
		if parts := strings.Split(rest, ":"); len(parts) == 3 {
			r.Entity = shorten(parts[0])
			if ts, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
				r.Timestamp = formatTime(ts)
			}
		}
		if decoded {
			r.Detail = fmt.Sprintf("%v: %v", fields["sender"], fields["text"])
		}
	case "user":
		r.Type = "USER"
		r.Entity = shorten(rest)
		if decoded {
			r.Timestamp = nanos(fields["created_at"])
			r.Detail = fmt.Sprintf("%v <%v>", fields["full_name"], fields["email"])
		}
	case "user_email":
		r.Type = "EMAIL"
		r.Entity = rest
		r.Detail = string(val)
	}
	return r
}

// nanos formats a JSON number holding unix nanoseconds.
func nanos(v any) string {
	f, ok := v.(float64)
	if !ok || f == 0 {
		return "-"
	}
	return formatTime(int64(f))
}

func formatTime(ns int64) string {
	return time.Unix(0, ns).Format("2006-01-02 15:04:05")
}

// shorten keeps the first 8 characters of an id for readability.
func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
