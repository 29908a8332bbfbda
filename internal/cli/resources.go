package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"backoffice-cli/internal/audit"
	"backoffice-cli/internal/listctl"
	"backoffice-cli/internal/model"
	"backoffice-cli/internal/mutate"
	"backoffice-cli/internal/resource"

	"github.com/spf13/cobra"
)

// newResourceCmd builds the command tree for one screen. Every resource gets
// the same verbs; schema differences (statuses, image support, filters) come
// from the registry entry.
func newResourceCmd(app *App, res resource.Resource) *cobra.Command {
	cmd := &cobra.Command{
		Use:   res.Key,
		Short: "Manage " + strings.ToLower(res.Title),
	}
	cmd.AddCommand(newListCmd(app, res))
	cmd.AddCommand(newCreateCmd(app, res))
	cmd.AddCommand(newEditCmd(app, res))
	cmd.AddCommand(newSetStatusCmd(app, res))
	cmd.AddCommand(newBulkStatusCmd(app, res))
	cmd.AddCommand(newDeleteCmd(app, res))
	if res.HasImage {
		cmd.AddCommand(newUploadImageCmd(app, res))
	}
	return cmd
}

func newListCmd(app *App, res resource.Resource) *cobra.Command {
	var (
		page, pageSize int
		search, status string
		filters        []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(res.Title) + " (paginated)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			ctrl := listctl.NewController(app.client, res.Path, pageSize)
			if search != "" {
				ctrl.SetSearch(search)
			}
			if status != "" {
				st := model.ParseStatus(status)
				if !res.HasStatus(st) {
					return fmt.Errorf("status %s not used by %s", st, res.Key)
				}
				ctrl.SetStatusFilter(string(st))
			}
			for _, f := range filters {
				k, v, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("bad --filter %q, want key=value", f)
				}
				ctrl.SetFilter(k, v)
			}
			// Page is applied after a first fetch establishes the page count.
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}
			if page > 1 && ctrl.SetPage(page) {
				if err := ctrl.Refresh(cmd.Context()); err != nil {
					return err
				}
			}

			if app.Format == "table" {
				return writeListTable(cmd, res, ctrl)
			}
			return writeOut(cmd, app, map[string]any{
				"items":      ctrl.Items(),
				"total":      ctrl.Total(),
				"page":       ctrl.Query().Page,
				"totalPages": ctrl.TotalPages(),
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", listctl.DefaultPageSize, "Rows per page (5, 10, 25 or 50)")
	cmd.Flags().StringVar(&search, "search", "", "Keyword search")
	cmd.Flags().StringVar(&status, "status", "", "Status filter ("+statusList(res)+")")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Extra filter key=value (repeatable)")
	return cmd
}

func writeListTable(cmd *cobra.Command, res resource.Resource, ctrl *listctl.Controller) error {
	headers := []string{"ID", "STATUS"}
	for _, col := range res.Columns {
		headers = append(headers, strings.ToUpper(col))
	}
	rows := make([][]string, 0, len(ctrl.Items()))
	for _, it := range ctrl.Items() {
		row := []string{it.ID, string(it.Status)}
		for _, col := range res.Columns {
			row = append(row, it.Fields[col])
		}
		rows = append(rows, row)
	}
	if err := writeTableOut(cmd, headers, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d total\n",
		ctrl.Query().Page, ctrl.TotalPages(), ctrl.Total())
	return nil
}

func newCreateCmd(app *App, res resource.Resource) *cobra.Command {
	var fieldArgs []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + strings.ToLower(strings.TrimSuffix(res.Title, "s")),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			fields, err := parseFields(res, fieldArgs)
			if err != nil {
				return err
			}
			// No page loaded in CLI mode, so the duplicate-name guard is
			// the server's job here.
			item, err := mutate.Create(cmd.Context(), app.client, res, fields, nil)
			app.record(cmd.Context(), audit.Entry{
				Resource: res.Path, Op: "create", TargetID: item.ID,
				Detail: item.Name(), OK: err == nil,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, item)
		},
	}

	cmd.Flags().StringArrayVar(&fieldArgs, "field", nil, "Field key=value (repeatable): "+fieldList(res, true))
	return cmd
}

func newEditCmd(app *App, res resource.Resource) *cobra.Command {
	var fieldArgs []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update fields of one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			fields, err := parseFields(res, fieldArgs)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return fmt.Errorf("nothing to update, pass --field")
			}
			err = mutate.UpdateFields(cmd.Context(), app.client, res, args[0], fields)
			app.record(cmd.Context(), audit.Entry{
				Resource: res.Path, Op: "edit", TargetID: args[0], OK: err == nil,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "updated": true})
		},
	}

	cmd.Flags().StringArrayVar(&fieldArgs, "field", nil, "Field key=value (repeatable): "+fieldList(res, false))
	return cmd
}

func newSetStatusCmd(app *App, res resource.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Set one record's status (" + statusList(res) + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			status := model.ParseStatus(args[1])
			err := mutate.SetStatus(cmd.Context(), app.client, res, args[0], status)
			app.record(cmd.Context(), audit.Entry{
				Resource: res.Path, Op: "status", TargetID: args[0],
				Detail: string(status), OK: err == nil,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "status": status})
		},
	}
}

func newBulkStatusCmd(app *App, res resource.Resource) *cobra.Command {
	var ids []string

	cmd := &cobra.Command{
		Use:   "bulk-status <status>",
		Short: "Set the status of several records in one request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			status := model.ParseStatus(args[0])
			err := mutate.BulkSetStatus(cmd.Context(), app.client, res, ids, status)
			app.record(cmd.Context(), audit.Entry{
				Resource: res.Path, Op: "bulk-status",
				Detail: fmt.Sprintf("%s x%d", status, len(ids)), OK: err == nil,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"ids": ids, "status": status})
		},
	}

	cmd.Flags().StringArrayVar(&ids, "id", nil, "Record id (repeatable)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newDeleteCmd(app *App, res resource.Resource) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete without --yes")
			}
			err := mutate.Delete(cmd.Context(), app.client, res, args[0])
			app.record(cmd.Context(), audit.Entry{
				Resource: res.Path, Op: "delete", TargetID: args[0], OK: err == nil,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "deleted": true})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}

func newUploadImageCmd(app *App, res resource.Resource) *cobra.Command {
	return &cobra.Command{
		Use:   "upload-image <id> <file>",
		Short: "Replace one record's image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd); err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			err = mutate.UploadImage(cmd.Context(), app.client, res, args[0], filepath.Base(args[1]), f)
			app.record(cmd.Context(), audit.Entry{
				Resource: res.Path, Op: "upload-image", TargetID: args[0],
				Detail: filepath.Base(args[1]), OK: err == nil,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]any{"id": args[0], "uploaded": true})
		},
	}
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		resKey string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show mutations recorded from this machine",
		RunE: func(cmd *cobra.Command, args []string) error {
			resPath := ""
			if resKey != "" {
				res, err := resource.Lookup(resKey)
				if err != nil {
					return err
				}
				resPath = res.Path
			}
			entries, err := app.openJournal(cmd.Context()).Recent(cmd.Context(), resPath, limit)
			if err != nil {
				return err
			}
			if app.Format == "table" {
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					okTxt := "ok"
					if !e.OK {
						okTxt = "FAILED"
					}
					rows = append(rows, []string{
						e.At.Local().Format("2006-01-02 15:04:05"),
						e.Resource, e.Op, e.TargetID, e.Detail, okTxt,
					})
				}
				return writeTableOut(cmd, []string{"AT", "RESOURCE", "OP", "TARGET", "DETAIL", "RESULT"}, rows)
			}
			return writeOut(cmd, app, entries)
		},
	}

	cmd.Flags().StringVar(&resKey, "resource", "", "Filter by resource key")
	cmd.Flags().IntVar(&limit, "limit", 50, "Max entries")
	return cmd
}

// parseFields turns repeated --field key=value flags into a field map,
// rejecting keys the schema does not declare.
func parseFields(res resource.Resource, args []string) (map[string]string, error) {
	fields := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("bad --field %q, want key=value", a)
		}
		if _, found := res.Find(k); !found {
			return nil, fmt.Errorf("unknown field %q for %s (have: %s)", k, res.Key, fieldList(res, true))
		}
		fields[k] = v
	}
	return fields, nil
}

func fieldList(res resource.Resource, create bool) string {
	var keys []string
	for _, f := range res.Fields {
		if f.CreateOnly && !create {
			continue
		}
		keys = append(keys, f.Key)
	}
	return strings.Join(keys, ", ")
}

func statusList(res resource.Resource) string {
	parts := make([]string, len(res.Statuses))
	for i, s := range res.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, "|")
}
