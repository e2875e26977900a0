package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

type stats struct {
	Sessions int `json:"sessions"`
	Rooms    int `json:"rooms"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("relay_stats: %v", err)
		os.Exit(1)
	}
}

func run() error {
	base := flag.String("addr", "http://localhost:8080", "relay HTTP address")
	watch := flag.Duration("watch", 0, "refresh interval; prints once when zero")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}
	for {
		st, err := fetch(context.Background(), client, *base)
		if err != nil {
			return err
		}
		render(*base, st)

		if *watch <= 0 {
			return nil
		}
		time.Sleep(*watch)
	}
}

func fetch(ctx context.Context, client *http.Client, base string) (stats, error) {
	var st stats
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/stats", nil)
	if err != nil {
		return st, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return st, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("get stats: unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("decode stats: %w", err)
	}
	return st, nil
}

func render(base string, st stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Relay", "Sessions", "Rooms", "Checked"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.Append([]string{
		base,
		strconv.Itoa(st.Sessions),
		strconv.Itoa(st.Rooms),
		time.Now().Format(time.TimeOnly),
	})
	table.Render()
}
