// Command memlist prints the resource directory of a data directory.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/davetcode/goaw/resource"
	"github.com/k0kubun/pp/v3"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	missingStyle = cellStyle.Foreground(lipgloss.Color("#FF5F87"))
)

// row - One directory entry as printed.
type row struct {
	ID      int
	Entry   resource.Entry
	Present bool
}

func main() {
	dataDir := flag.String("data", ".", "Directory holding MEMLIST.BIN and the BANK files")
	verbose := flag.Bool("verbose", false, "Dump every entry in full")
	kind := flag.String("type", "", "Only show entries of this type")
	flag.Parse()

	rows, err := readDirectory(os.DirFS(*dataDir))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *kind != "" {
		rows = filterType(rows, *kind)
	}

	if *verbose {
		_, _ = pp.Println(rows)
		return
	}
	fmt.Println(render(rows))
	fmt.Println(summary(rows))
}

func readDirectory(storage fs.FS) ([]row, error) {
	f, err := storage.Open(resource.MemlistFile)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint:errcheck

	entries, err := resource.ParseMemlist(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resource.MemlistFile, err)
	}

	banks := map[uint8]bool{}
	rows := make([]row, len(entries))
	for i, e := range entries {
		present, seen := banks[e.Bank]
		if !seen {
			_, err := fs.Stat(storage, resource.BankFile(e.Bank))
			present = err == nil
			banks[e.Bank] = present
		}
		rows[i] = row{ID: i, Entry: e, Present: present || e.Bank == 0}
	}
	return rows, nil
}

func filterType(rows []row, kind string) []row {
	var out []row
	for _, r := range rows {
		if r.Entry.Type.String() == kind {
			out = append(out, r)
		}
	}
	return out
}

func render(rows []row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TYPE", "RANK", "BANK", "OFFSET", "PACKED", "SIZE").
		StyleFunc(func(r, _ int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return headerStyle
			case r >= 0 && r < len(rows) && !rows[r].Present:
				return missingStyle
			default:
				return cellStyle
			}
		})

	for _, r := range rows {
		e := r.Entry
		packed := "-"
		if e.Packed() {
			packed = fmt.Sprintf("%d", e.PackedSize)
		}
		t.Row(
			fmt.Sprintf("0x%02X", r.ID),
			e.Type.String(),
			fmt.Sprintf("%d", e.Rank),
			resource.BankFile(e.Bank),
			fmt.Sprintf("0x%06X", e.BankOffset),
			packed,
			fmt.Sprintf("%d", e.UnpackedSize),
		)
	}
	return t.Render()
}

// summary - Entry counts and unpacked bytes per type.
func summary(rows []row) string {
	counts := map[resource.Type]int{}
	sizes := map[resource.Type]uint32{}
	for _, r := range rows {
		counts[r.Entry.Type]++
		sizes[r.Entry.Type] += r.Entry.UnpackedSize
	}

	types := make([]resource.Type, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	t := table.New().Border(lipgloss.RoundedBorder()).Headers("TYPE", "ENTRIES", "BYTES")
	for _, ty := range types {
		t.Row(ty.String(), fmt.Sprintf("%d", counts[ty]), fmt.Sprintf("%d", sizes[ty]))
	}
	return t.Render()
}
