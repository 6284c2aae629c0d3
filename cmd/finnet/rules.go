package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/Veraticus/finnet/internal/cli"
	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/config"
	"github.com/Veraticus/finnet/internal/pattern"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and manage classification reference data",
	}

	cmd.AddCommand(rulesShowCmd())
	cmd.AddCommand(rulesInitCmd())
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

func rulesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show product codes, keyword rules and advisory categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, ref, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			codes := make([]string, 0, len(ref.ProductCodes))
			for code := range ref.ProductCodes {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			productRows := make([][]string, 0, len(codes))
			for _, code := range codes {
				m := ref.ProductCodes[code]
				productRows = append(productRows, []string{code, m.Category, m.RegulatoryCode, string(m.RiskLevel)})
			}
			fmt.Fprintln(out, cli.FormatTitle("Tier 1: product codes"))
			fmt.Fprintln(out, simpleTable([]string{"CODE", "CATEGORY", "ITRS", "RISK"}, productRows))

			matcher, err := pattern.NewMatcher(ref.KeywordRules)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, cli.FormatTitle("Tier 2: keyword rules (first match wins)"))
			fmt.Fprintln(out, simpleTable([]string{"#", "NAME", "MATCHES", "CATEGORY", "ITRS", "RISK"}, ruleRows(matcher)))

			catRows := make([][]string, 0, len(ref.AdvisoryCategories))
			for _, c := range ref.AdvisoryCategories {
				catRows = append(catRows, []string{c.Code, c.Name})
			}
			fmt.Fprintln(out, cli.FormatTitle("Tier 3: advisory categories"))
			fmt.Fprintln(out, simpleTable([]string{"ITRS", "CATEGORY"}, catRows))
			return nil
		},
	}
}

func rulesInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the built-in reference data to a YAML file for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := config.ExpandPath(args[0])

			if _, err := os.Stat(path); err == nil && !force {
				return common.NewUserError(fmt.Sprintf("%s already exists (use --force to overwrite)", path), nil)
			}
			if err := config.DefaultReferenceData().Save(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Reference data written to "+path))
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Set compliance.reference_data to use it"))
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func rulesTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <description>",
		Short: "Show which keyword rule matches a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ref, err := loadConfig()
			if err != nil {
				return err
			}

			matcher, err := pattern.NewMatcher(ref.KeywordRules)
			if err != nil {
				return err
			}

			description := strings.Join(args, " ")
			rule, ok := matcher.Match(description)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No keyword rule matches; the advisory classifier would decide"))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%s -> %s (%s)", rule.Name, rule.Category, rule.Code())))
			return nil
		},
	}
}

// ruleRows lists the rules as the matcher evaluates them, keywords normalized.
func ruleRows(m *pattern.Matcher) [][]string {
	rules := m.Rules()
	rows := make([][]string, 0, len(rules))
	for i, r := range rules {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), r.Name, describePredicates(r), r.Category, r.Code(), string(r.RiskLevel),
		})
	}
	return rows
}

func describePredicates(r pattern.Rule) string {
	var parts []string
	if len(r.AllOf) > 0 {
		parts = append(parts, "all of "+strings.Join(r.AllOf, ", "))
	}
	if len(r.AnyOf) > 0 {
		parts = append(parts, "any of "+strings.Join(r.AnyOf, ", "))
	}
	if r.Pattern != "" {
		parts = append(parts, "/"+r.Pattern+"/")
	}
	return strings.Join(parts, "; ")
}

func simpleTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(cli.SubtleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cli.TableHeaderStyle
			}
			return cli.TableCellStyle
		}).
		String()
}
