package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// PrettyFormatter renders a styled table for terminals.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	if len(r.Entries) == 0 {
		w.WriteString(MutedStyle.Render("No answers resolved"))
		w.WriteString("\n")
		return nil
	}

	keyWidth, valueWidth := 0, 0
	for _, e := range r.Entries {
		keyWidth = max(keyWidth, len(e.Key))
		valueWidth = max(valueWidth, len(FormatValue(e.Value)))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s  %s\n",
		TableHeaderStyle.Render(padRight("KEY", keyWidth)),
		TableHeaderStyle.Render(padRight("VALUE", valueWidth)),
		TableHeaderStyle.Render("SOURCE"))
	for _, e := range r.Entries {
		style, ok := sourceStyles[e.Source]
		if !ok {
			style = ValueStyle
		}
		fmt.Fprintf(&sb, "%s  %s  %s\n",
			LabelStyle.Render(padRight(e.Key, keyWidth)),
			ValueStyle.Render(padRight(FormatValue(e.Value), valueWidth)),
			style.Render(e.Source))
	}
	w.WriteString(HeaderBox.Render(strings.TrimRight(sb.String(), "\n")))
	w.WriteString("\n")

	if r.Error != "" {
		w.WriteString(ErrorStyle.Bold(true).Render("Invalid: "))
		w.WriteString(ErrorStyle.Render(r.Error))
		w.WriteString("\n")
	}
	if len(r.Warnings) > 0 {
		w.WriteString(WarningStyle.Bold(true).Render("Warnings:"))
		w.WriteString("\n")
		for _, warning := range r.Warnings {
			w.WriteString(WarningStyle.Render("  " + warning))
			w.WriteString("\n")
		}
	}
	return nil
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// PlainFormatter writes KEY VALUE SOURCE columns without styling.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	if _, err := tw.Write([]byte("KEY\tVALUE\tSOURCE\n")); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, FormatValue(e.Value), e.Source); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if r.Error != "" {
		fmt.Fprintf(w, "error: %s\n", r.Error)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

// JSONFormatter writes an indented JSON document.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newDocument(r))
}

// YAMLFormatter writes a YAML document.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(r)); err != nil {
		return err
	}
	return enc.Close()
}

// TOMLFormatter writes a TOML document.
type TOMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *TOMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	return toml.NewEncoder(w).Encode(newDocument(r))
}

func init() {
	Register("pretty", func() Formatter { return &PrettyFormatter{} })
	Register("plain", func() Formatter { return &PlainFormatter{} })
	Register("json", func() Formatter { return &JSONFormatter{} })
	Register("yaml", func() Formatter { return &YAMLFormatter{} })
	Register("toml", func() Formatter { return &TOMLFormatter{} })
}

var (
	_ Formatter = (*PrettyFormatter)(nil)
	_ Formatter = (*PlainFormatter)(nil)
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*YAMLFormatter)(nil)
	_ Formatter = (*TOMLFormatter)(nil)
)
