package cli

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/client/router"
)

func routeAnnotations(name string) map[string]string {
	return map[string]string{annotationRoute: routePath(name)}
}

func tasksCmd(app appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "tasks",
		Short:       "Show tasks assigned to you",
		Args:        cobra.NoArgs,
		Annotations: routeAnnotations(router.RouteTaskInbox),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			data, err := a.client.MyTasks(cmd.Context())
			if err != nil {
				return err
			}
			printList(a.io, data)
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:         "start <id>",
			Short:       "Start a task",
			Args:        cobra.ExactArgs(1),
			Annotations: routeAnnotations(router.RouteTaskInbox),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := app()
				data, err := a.client.StartTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				iocli.PrintJSON(a.io, data)
				return nil
			},
		},
		completeTaskCmd(app),
	)
	return cmd
}

func completeTaskCmd(app appFunc) *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:         "complete <id>",
		Short:       "Complete a task",
		Args:        cobra.ExactArgs(1),
		Annotations: routeAnnotations(router.RouteTaskInbox),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			data, err := a.client.CompleteTask(cmd.Context(), args[0], notes)
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, data)
			return nil
		},
	}

	cmd.Flags().StringVarP(&notes, "notes", "n", "", "completion notes")
	return cmd
}

func approvalsCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:         "approvals",
		Short:       "Show approvals waiting for your decision",
		Args:        cobra.NoArgs,
		Annotations: routeAnnotations(router.RouteApprovalCenter),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			data, err := a.client.MyPendingApprovals(cmd.Context())
			if err != nil {
				return err
			}
			printList(a.io, data)
			return nil
		},
	}
}

func approveCmd(app appFunc) *cobra.Command {
	return decisionCmd(app, "approve", "Approve a pending request", func(a *App) decideFunc {
		return a.client.Approve
	})
}

func rejectCmd(app appFunc) *cobra.Command {
	return decisionCmd(app, "reject", "Reject a pending request", func(a *App) decideFunc {
		return a.client.Reject
	})
}

type decideFunc func(ctx context.Context, id, comments string) (json.RawMessage, error)

func decisionCmd(app appFunc, use, short string, pick func(*App) decideFunc) *cobra.Command {
	var comments string

	cmd := &cobra.Command{
		Use:         use + " <approval-id>",
		Short:       short,
		Args:        cobra.ExactArgs(1),
		Annotations: routeAnnotations(router.RouteApprovalCenter),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			data, err := pick(a)(cmd.Context(), args[0], comments)
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, data)
			return nil
		},
	}

	cmd.Flags().StringVarP(&comments, "comments", "c", "", "decision comments")
	return cmd
}

func notificationsCmd(app appFunc) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:         "notifications",
		Short:       "Show your notifications",
		Args:        cobra.NoArgs,
		Annotations: routeAnnotations(router.RouteDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			count, err := a.client.UnreadCount(cmd.Context())
			if err != nil {
				return err
			}
			a.io.Printf("Unread: %d\n", count)

			data, err := a.client.MyNotifications(cmd.Context(), unread)
			if err != nil {
				return err
			}
			printList(a.io, data)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")

	var all bool
	markRead := &cobra.Command{
		Use:         "read [id]",
		Short:       "Mark a notification (or --all) as read",
		Args:        cobra.MaximumNArgs(1),
		Annotations: routeAnnotations(router.RouteDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			switch {
			case all:
				if err := a.client.MarkAllRead(cmd.Context()); err != nil {
					return err
				}
				a.io.Println("✓ All notifications marked as read")
			case len(args) == 1:
				if err := a.client.MarkRead(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.io.Printf("✓ Notification %s marked as read\n", args[0])
			default:
				return cmd.Usage()
			}
			return nil
		},
	}
	markRead.Flags().BoolVar(&all, "all", false, "mark every notification as read")

	cmd.AddCommand(markRead)
	return cmd
}

func dashboardCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:         "dashboard",
		Short:       "Executive summary for the current organization",
		Args:        cobra.NoArgs,
		Annotations: routeAnnotations(router.RouteDashboard),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			org, err := a.prefs.CurrentOrganization(ctx)
			if err != nil {
				return err
			}
			var orgID string
			if org != nil {
				orgID = strconv.FormatInt(org.ID, 10)
				a.io.Printf("Organization: %s\n", org.DisplayName(a.prefs.Locale(ctx)))
			}

			data, err := a.client.ExecutiveSummary(ctx, orgID)
			if err != nil {
				return err
			}
			iocli.PrintJSON(a.io, data)
			return nil
		},
	}
}
