package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yeremiapane/restaurant-dashboard/viewmodel"
)

var errQuit = errors.New("quit")

const helpText = `commands:
  n | p               next / previous page
  g <page>            go to page
  b all|active|completed
  src <source>|all    filter by order source
  / <text>            search order number, customer or table ("/" clears)
  s status|newest|oldest|table|amount
  size <n>            rows per page
  r                   refresh now
  q                   quit`

// board is the part of a mounted session the command loop drives.
type board interface {
	View() *viewmodel.View
	Refresh()
}

// handleCommand menerapkan satu baris perintah ke view
func handleCommand(b board, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	view := b.View()
	arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch fields[0] {
	case "q", "quit", "exit":
		return errQuit
	case "n":
		return view.SetPage(view.Config().PageNumber + 1)
	case "p":
		page := view.Config().PageNumber - 1
		if page < 1 {
			page = 1
		}
		return view.SetPage(page)
	case "g":
		page, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("page must be a number: %w", err)
		}
		return view.SetPage(page)
	case "b":
		return view.SetBucket(viewmodel.StatusBucket(arg))
	case "src":
		if arg == "" {
			arg = viewmodel.SourceAll
		}
		return view.SetSource(arg)
	case "/":
		return view.SetSearch(arg)
	case "s":
		return view.SetSort(viewmodel.SortKey(arg))
	case "size":
		size, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("size must be a number: %w", err)
		}
		return view.SetPageSize(size)
	case "r":
		b.Refresh()
		return nil
	}

	// "/text" tanpa spasi
	if strings.HasPrefix(fields[0], "/") {
		return view.SetSearch(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	}
	return fmt.Errorf("unknown command %q\n%s", fields[0], helpText)
}
