package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/fedipage/fedipage/internal/cli/pagination"
	"github.com/fedipage/fedipage/internal/config"
	"github.com/fedipage/fedipage/internal/mastodon"
	"github.com/fedipage/fedipage/internal/tui"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

const tabPadding = 2

// resolveFormat returns flag, or the configured default when it is empty.
func resolveFormat(flag string, cfg *config.Config) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	switch format {
	case OutputTable, OutputJSON, OutputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", format)
	}
}

type accountOutput struct {
	mastodon.Account `yaml:",inline"`

	Relationship *mastodon.Relationship `json:"relationship,omitempty" yaml:"relationship,omitempty"`
}

type listOutput struct {
	Meta     pagination.ListMeta `json:"meta"     yaml:"meta"`
	Accounts []accountOutput     `json:"accounts" yaml:"accounts"`
}

func newListOutput(meta pagination.ListMeta, rows []pagination.AccountRow) listOutput {
	out := listOutput{Meta: meta, Accounts: make([]accountOutput, 0, len(rows))}
	for _, r := range rows {
		o := accountOutput{Account: r.Record}
		if r.Enriched {
			rel := r.Enrichment
			o.Relationship = &rel
		}
		out.Accounts = append(out.Accounts, o)
	}
	return out
}

// renderAccounts writes rows in format. styled applies terminal styles to
// the table footer.
func renderAccounts(w io.Writer, format string, meta pagination.ListMeta, rows []pagination.AccountRow, styled bool) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newListOutput(meta, rows))
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(newListOutput(meta, rows))
	default:
		return renderAccountTable(w, meta, rows, styled)
	}
}

func renderAccountTable(w io.Writer, meta pagination.ListMeta, rows []pagination.AccountRow, styled bool) error {
	withRels := false
	for _, r := range rows {
		if r.Enriched {
			withRels = true
			break
		}
	}

	header := "ACCOUNT\tNAME\tFOLLOWERS\tFOLLOWING\tPOSTS"
	if withRels {
		header += "\tRELATIONSHIP"
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		a := r.Record
		line := strings.Join([]string{
			"@" + a.Acct,
			a.Name(),
			strconv.Itoa(a.FollowersCount),
			strconv.Itoa(a.FollowingCount),
			strconv.Itoa(a.StatusesCount),
		}, "\t")
		if withRels {
			line += "\t" + r.Enrichment.Label()
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	footer := tableFooter(meta)
	if styled {
		footer = tui.SubtleStyle.Render(footer)
	}
	_, err := fmt.Fprintf(w, "\n%s\n", footer)
	return err
}

func tableFooter(meta pagination.ListMeta) string {
	parts := []string{
		tui.FormatCount(meta.Count, "account"),
		tui.FormatCount(meta.Pages, "page"),
	}
	switch {
	case meta.Complete:
		parts = append(parts, "complete")
	case meta.Cursor != "":
		parts = append(parts, "more available after "+meta.Cursor)
	}
	if meta.Offline {
		parts = append(parts, "offline")
	}
	return strings.Join(parts, ", ")
}

// renderInstance writes server information in format.
func renderInstance(w io.Writer, format string, inst mastodon.Instance, compatErr error) error {
	type instanceOutput struct {
		mastodon.Instance `yaml:",inline"`

		Compatible bool   `json:"compatible"                  yaml:"compatible"`
		Problem    string `json:"compatibility_error,omitempty" yaml:"compatibility_error,omitempty"`
	}
	out := instanceOutput{Instance: inst, Compatible: compatErr == nil}
	if compatErr != nil {
		out.Problem = compatErr.Error()
	}

	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintf(tw, "Domain:\t%s\n", inst.Domain)
	fmt.Fprintf(tw, "Title:\t%s\n", inst.Title)
	fmt.Fprintf(tw, "Version:\t%s\n", inst.Version)
	fmt.Fprintf(tw, "API:\tv%d\n", inst.APIVersion)
	if inst.Users > 0 {
		fmt.Fprintf(tw, "Users:\t%s\n", tui.FormatCount(inst.Users, "user"))
	}
	if inst.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", inst.Description)
	}
	if compatErr != nil {
		fmt.Fprintf(tw, "Compatible:\tno (%v)\n", compatErr)
	} else {
		fmt.Fprintf(tw, "Compatible:\tyes (>= %s)\n", mastodon.MinServerVersion)
	}
	return tw.Flush()
}

// renderValues writes a flat key/value map as JSON or YAML.
func renderValues(w io.Writer, format string, values map[string]string) error {
	if format == OutputYAML {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(values)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(values)
}
