package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sysmlexport/pkg/classify"
	"github.com/matzehuels/sysmlexport/pkg/model"
	"github.com/matzehuels/sysmlexport/pkg/pipeline"
)

var classifyHeaders = []string{"ID", "NAME", "META", "PARENT", "CATEGORY", "ROLE"}

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	var (
		root string
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "classify <model.json>",
		Short: "Show the diagram category of each model element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read model: %w", err)
			}
			tree, meta, err := pipeline.Load(data, c.Config.Meta.Types)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("root") {
				root = c.Config.Export.Root
			}
			start, err := pipeline.ResolveRoot(tree, root)
			if err != nil {
				return err
			}

			rows := classifyRows(tree, meta, start, all)
			if len(rows) == 0 {
				printInfo("No classified elements below %s", start.ID)
				return nil
			}
			fmt.Println(classifyTable(rows))
			printDetail("%d elements", len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "start node ID (default: model root)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "include unclassified elements")
	completeRootFlag(cmd)

	return cmd
}

// classifyRows classifies every descendant of start in model order. Rows
// with category none are dropped unless all is set.
func classifyRows(tree *model.Tree, oracle classify.Oracle, start *model.Node, all bool) [][]string {
	var rows [][]string
	for _, n := range tree.Nodes() {
		if n == start || !isDescendant(n, start) {
			continue
		}
		res := classify.Classify(oracle, n, n.Parent)
		if !res.Matched() && !all {
			continue
		}
		role := ""
		if res.Matched() {
			role = res.Role.String()
		}
		rows = append(rows, []string{n.ID, n.Name, oracle.MetaType(n), n.ParentID(), res.Category.String(), role})
	}
	return rows
}

func isDescendant(n, ancestor *model.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// classifyTable renders rows with category-colored cells.
func classifyTable(rows [][]string) *table.Table {
	categoryCol := 4
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(classifyHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(StyleTitle)
			}
			if col == categoryCol && row >= 0 && row < len(rows) {
				if rows[row][col] == classify.None.String() {
					return base.Inherit(StyleDim)
				}
				return base.Inherit(StyleHighlight)
			}
			return base
		})
}
