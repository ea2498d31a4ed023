package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alshehri12/grc/internal/client/api"
	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/client/router"
)

// resourceRoutes экран, на котором показывается ресурс
var resourceRoutes = map[string]string{
	"governance.policies":   router.RoutePolicies,
	"governance.procedures": router.RouteProcedures,
	"governance.documents":  router.RouteDocuments,
	"risk.risks":            router.RouteRiskRegister,
	"bcm.functions":         router.RouteBusinessFunctions,
	"bcm.bc-plans":          router.RouteBCPlans,
	"bcm.bia":               router.RouteBIA,
	"bcm.dr-plans":          router.RouteDRPlans,
	"bcm.tests":             router.RouteBCMTests,
	"compliance.controls":   router.RouteControls,
	"compliance.audits":     router.RouteAudits,
	"compliance.evidence":   router.RouteEvidence,
	"workflow.tasks":        router.RouteTaskInbox,
	"workflow.approvals":    router.RouteApprovalCenter,
	"workflow.instances":    router.RouteWorkflow,
	"core.profiles":         router.RouteProfile,
	"core.settings":         router.RouteSettings,
}

// resourceRoute путь экрана ресурса; остальные ресурсы открываются с Dashboard
func resourceRoute(name string) string {
	if routeName, ok := resourceRoutes[name]; ok {
		return routePath(routeName)
	}
	return routePath(router.RouteDashboard)
}

func resourceAnnotations() map[string]string {
	return map[string]string{annotationResourceRoute: "true"}
}

func resourcesCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List resource names accepted by list/show/create/update/delete/action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			for _, name := range api.CatalogNames() {
				a.io.Printf("%-32s %s\n", name, api.Catalog[name])
			}
			return nil
		},
	}
}

func listCmd(app appFunc) *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:         "list <resource>",
		Short:       "List a resource collection",
		Example:     "  grc list risk.risks -p organization=1 -p status=open",
		Args:        cobra.ExactArgs(1),
		Annotations: resourceAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.client.Lookup(args[0])
			if err != nil {
				return err
			}
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			data, err := res.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			printList(a.io, data)
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value (repeatable)")
	return cmd
}

func showCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:         "show <resource> <id>",
		Short:       "Show one item",
		Args:        cobra.ExactArgs(2),
		Annotations: resourceAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.client.Lookup(args[0])
			if err != nil {
				return err
			}
			data, err := res.Get(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, data)
			return nil
		},
	}
}

func createCmd(app appFunc) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:         "create <resource>",
		Short:       "Create an item from JSON",
		Example:     `  grc create governance.policies -d '{"title":"Access control"}'` + "\n" + `  grc create risk.risks -d @risk.json`,
		Args:        cobra.ExactArgs(1),
		Annotations: resourceAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.client.Lookup(args[0])
			if err != nil {
				return err
			}
			body, err := readBody(data, true)
			if err != nil {
				return err
			}
			out, err := res.Create(cmd.Context(), body)
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body or @file")
	return cmd
}

func updateCmd(app appFunc) *cobra.Command {
	var (
		data    string
		partial bool
	)

	cmd := &cobra.Command{
		Use:         "update <resource> <id>",
		Short:       "Replace (PUT) or patch (--partial) an item",
		Args:        cobra.ExactArgs(2),
		Annotations: resourceAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.client.Lookup(args[0])
			if err != nil {
				return err
			}
			body, err := readBody(data, true)
			if err != nil {
				return err
			}

			var out json.RawMessage
			if partial {
				out, err = res.PartialUpdate(cmd.Context(), args[1], body)
			} else {
				out, err = res.Update(cmd.Context(), args[1], body)
			}
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body or @file")
	cmd.Flags().BoolVar(&partial, "partial", false, "send PATCH instead of PUT")
	return cmd
}

func deleteCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:         "delete <resource> <id>",
		Short:       "Delete an item",
		Args:        cobra.ExactArgs(2),
		Annotations: resourceAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.client.Lookup(args[0])
			if err != nil {
				return err
			}
			if err := res.Delete(cmd.Context(), args[1]); err != nil {
				return err
			}
			a.io.Printf("✓ Deleted %s %s\n", res.Name, args[1])
			return nil
		},
	}
}

func actionCmd(app appFunc) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:         "action <resource> <id> <name>",
		Short:       "Run a named action on an item",
		Example:     "  grc action governance.policies 12 submit_for_review\n  grc action workflow.tasks 7 complete -d '{\"notes\":\"done\"}'",
		Args:        cobra.ExactArgs(3),
		Annotations: resourceAnnotations(),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			res, err := a.client.Lookup(args[0])
			if err != nil {
				return err
			}
			body, err := readBody(data, false)
			if err != nil {
				return err
			}
			out, err := res.Action(cmd.Context(), args[1], args[2], body)
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON body or @file")
	return cmd
}

// parseParams разбирает повторяемый флаг key=value
func parseParams(params []string) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}
	query := make(url.Values, len(params))
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", p)
		}
		query.Add(key, value)
	}
	return query, nil
}

// readBody читает тело запроса из флага: JSON или @file.
// Пустое значение допустимо только при required=false.
func readBody(data string, required bool) (json.RawMessage, error) {
	if data == "" {
		if required {
			return nil, fmt.Errorf("request body is required (-d JSON or -d @file)")
		}
		return nil, nil
	}

	raw := []byte(data)
	if path, ok := strings.CutPrefix(data, "@"); ok {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		raw = content
	}

	if !json.Valid(raw) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	return json.RawMessage(raw), nil
}

// printList выводит элементы страницы и счетчик, либо весь ответ как есть
func printList(out iocli.IO, data json.RawMessage) {
	page, ok := api.ParsePage(data)
	if !ok {
		iocli.PrintJSON(out, data)
		return
	}
	for _, item := range page.Results {
		iocli.PrintJSON(out, item)
	}
	out.Printf("(%d of %d)\n", len(page.Results), page.Count)
	if page.Next != nil {
		out.Println("More results available: use -p page=<n>")
	}
}
