// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/staranto/vhsecgo/internal/attrs"
	"github.com/staranto/vhsecgo/internal/config"
)

// alertScore is the score at and above which a row is highlighted.
const alertScore = 1.0

// TableWriter renders the rows as a borderless table honoring the color and
// titles options. Rows scoring alertScore or more use the alert color.
func TableWriter(
	resultSet []map[string]interface{},
	attrs attrs.AttrList,
	opts Options,
	w io.Writer) error {

	if len(resultSet) == 0 {
		return nil
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
		alertStyle   = cellStyle
	)

	if opts.Color {
		c := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(c.header))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(c.even))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(c.odd))
		alertStyle = alertStyle.Foreground(lipgloss.Color(c.alert)).Bold(true)
	}

	pad, _ := config.GetInt("padding", 2)
	log.Debugf("padding: %v", pad)

	var rows [][]string
	alerts := make([]bool, 0, len(resultSet))
	for _, result := range resultSet {
		row := make([]string, 0, len(attrs))
		for _, attr := range attrs {
			if !attr.Include {
				continue
			}
			row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
		}
		rows = append(rows, row)

		score, ok := result["score"].(float64)
		alerts = append(alerts, ok && score >= alertScore)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row >= 0 && row < len(alerts) && alerts[row]:
				style = alertStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Rows(rows...)

	if opts.Titles {
		var headers []string
		for _, attr := range attrs {
			if attr.Include {
				headers = append(headers, attr.OutputKey)
			}
		}

		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}

	_, err := fmt.Fprintln(w, t)
	return err
}

type colors struct {
	header, even, odd, alert string
}

// getColors returns configured color values for table rendering.
func getColors(key string) colors {
	var c colors
	c.header, _ = config.GetString(key+".title", "#f6be00")
	c.even, _ = config.GetString(key+".even", "#ffffff")
	c.odd, _ = config.GetString(key+".odd", "#00c8f0")
	c.alert, _ = config.GetString(key+".alert", "#ff5f5f")
	return c
}
