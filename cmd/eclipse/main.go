package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

type cli struct {
	Serve      serveCmd      `cmd:"" help:"Run the Eclipse dashboard server."`
	Catalog    catalogCmd    `cmd:"" help:"Print the metric catalog."`
	CheckEmail checkEmailCmd `cmd:"" name:"check-email" help:"Validate email addresses with the landing-form rules."`
}

var errInvalidEmails = errors.New("eclipse: one or more addresses are invalid")

func main() {
	ctx := kong.Parse(&cli{},
		kong.Name("eclipse"),
		kong.Description("Éminence Organics Eclipse dashboard."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

type catalogCmd struct {
	Path   string `type:"existingfile" help:"Catalog manifest (YAML) to load instead of the built-in catalog."`
	Format string `default:"table" enum:"table,json,yaml" help:"Output format (table, json, yaml)."`
	View   string `help:"Only print metrics for this category."`
}

func (cmd *catalogCmd) Run(_ context.Context) error {
	doc, err := loadCatalog(cmd.Path)
	if err != nil {
		return err
	}
	if cmd.View != "" {
		filtered := *doc
		filtered.Metrics = doc.Catalog().ForView(eclipse.Category(cmd.View))
		doc = &filtered
	}
	return writeCatalog(os.Stdout, doc, cmd.Format)
}

func loadCatalog(path string) (*eclipse.CatalogDocument, error) {
	if path == "" {
		return eclipse.NewCatalogDocument(eclipse.DefaultCatalog()), nil
	}
	return eclipse.ReadCatalog(path)
}

func writeCatalog(w io.Writer, doc *eclipse.CatalogDocument, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	case "yaml":
		return eclipse.EncodeCatalog(w, doc)
	default:
		_, err := fmt.Fprintln(w, catalogTable(doc.Metrics))
		return err
	}
}

var statusStyles = map[eclipse.Status]lipgloss.Style{
	eclipse.StatusGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	eclipse.StatusYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	eclipse.StatusRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

func catalogTable(metrics []eclipse.Metric) string {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{
			m.ID,
			m.Title,
			m.Value,
			m.Status.Glyph(),
			strconv.Itoa(m.Progress) + "%",
			eclipse.FormatTarget(m.Target),
			string(m.View),
		})
	}
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "VALUE", "", "PROGRESS", "TARGET", "VIEW").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 3 && row >= 0 && row < len(metrics) {
				return statusStyles[metrics[row].Status].Padding(0, 1)
			}
			return cell
		}).
		String()
}

type checkEmailCmd struct {
	Addresses []string `arg:"" name:"address" help:"Addresses to validate."`
}

func (cmd *checkEmailCmd) Run(_ context.Context) error {
	return checkEmails(os.Stdout, cmd.Addresses)
}

func checkEmails(w io.Writer, addresses []string) error {
	invalid := 0
	for _, addr := range addresses {
		verdict := "valid"
		if !eclipse.ValidateEmail(addr) {
			verdict = "invalid"
			invalid++
		}
		fmt.Fprintf(w, "%s\t%s\n", verdict, strconv.Quote(addr))
	}
	if invalid > 0 {
		return fmt.Errorf("%w (%d of %d)", errInvalidEmails, invalid, len(addresses))
	}
	return nil
}
