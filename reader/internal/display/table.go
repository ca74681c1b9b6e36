// Package display renders a read ResidenceCardData for a terminal.
package display

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/dadachi/readmynumber-plus-sub000/pkg/rdc"
)

var (
	colorHeader  = text.Colors{text.FgCyan, text.Bold}
	colorLabel   = text.Colors{text.FgYellow}
	colorValue   = text.Colors{text.FgWhite}
	colorSuccess = text.Colors{text.FgGreen}
	colorError   = text.Colors{text.FgRed}
)

func getTableStyle() table.Style {
	style := table.StyleRounded
	style.Color.Header = colorHeader
	style.Color.Row = text.Colors{text.FgWhite}
	style.Options.SeparateRows = false
	return style
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(getTableStyle())
	return t
}

// PrintCardData renders a summary of the card read: common data, card type,
// image sizes, and the signature verification result.
func PrintCardData(data *rdc.ResidenceCardData) {
	fmt.Println()
	t := newTable()
	t.SetTitle("RESIDENCE CARD DATA")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})

	t.AppendRow(table.Row{"Card type", string(rune(data.CardType))})
	t.AppendRow(table.Row{"Common data", hex.EncodeToString(data.CommonData)})
	t.AppendRow(table.Row{"Front image", fmt.Sprintf("%d bytes", len(data.FrontImage))})
	t.AppendRow(table.Row{"Face image", fmt.Sprintf("%d bytes", len(data.FaceImage))})
	t.AppendRow(table.Row{"Address", hex.EncodeToString(data.Address)})
	if data.Additional != nil {
		t.AppendRow(table.Row{"Comprehensive permission", fmt.Sprintf("%d bytes", len(data.Additional.ComprehensivePermission))})
		t.AppendRow(table.Row{"Individual permission", fmt.Sprintf("%d bytes", len(data.Additional.IndividualPermission))})
		t.AppendRow(table.Row{"Extension application", fmt.Sprintf("%d bytes", len(data.Additional.ExtensionApplication))})
	}
	t.Render()

	fmt.Println()
	printSignature(data.SignatureVerificationResult)
}

func printSignature(result *rdc.SignatureVerificationResult) {
	t := newTable()
	t.SetTitle("SIGNATURE VERIFICATION")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 50},
	})

	if result == nil {
		t.AppendRow(table.Row{"Status", colorError.Sprint("unavailable")})
		t.Render()
		return
	}

	status := colorError.Sprint("INVALID")
	if result.IsValid {
		status = colorSuccess.Sprint("VALID")
	}
	t.AppendRow(table.Row{"Status", status})
	t.AppendRow(table.Row{"Embedded hash", result.EmbeddedHash})
	t.AppendRow(table.Row{"Computed hash", result.ComputedHash})
	t.AppendRow(table.Row{"Subject", result.Subject})
	t.AppendRow(table.Row{"Issuer", result.Issuer})
	t.AppendRow(table.Row{"Not before", result.NotBefore})
	t.AppendRow(table.Row{"Not after", result.NotAfter})
	t.Render()
}
