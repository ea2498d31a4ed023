package api

import (
	"context"
	"encoding/json"
	"net/url"
)

// orgQuery builds ?organization=<id>; empty id sends no filter
func orgQuery(orgID string) url.Values {
	if orgID == "" {
		return nil
	}
	return url.Values{"organization": []string{orgID}}
}

// DepartmentTree returns the department hierarchy of an organization
func (c *Client) DepartmentTree(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/core/departments/").Collection(ctx, "tree", orgQuery(orgID))
}

// SubmitPolicyForReview moves a draft policy to review
func (c *Client) SubmitPolicyForReview(ctx context.Context, id string) (json.RawMessage, error) {
	return c.Resource("/governance/policies/").Action(ctx, id, "submit_for_review", nil)
}

// ApprovePolicy approves a policy under review
func (c *Client) ApprovePolicy(ctx context.Context, id string) (json.RawMessage, error) {
	return c.Resource("/governance/policies/").Action(ctx, id, "approve", nil)
}

// PublishPolicy publishes an approved policy
func (c *Client) PublishPolicy(ctx context.Context, id string) (json.RawMessage, error) {
	return c.Resource("/governance/policies/").Action(ctx, id, "publish", nil)
}

// RiskMatrix returns the likelihood/impact matrix
func (c *Client) RiskMatrix(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/risk/risks/").Collection(ctx, "matrix", orgQuery(orgID))
}

// RiskStatistics returns aggregated risk counters
func (c *Client) RiskStatistics(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/risk/risks/").Collection(ctx, "statistics", orgQuery(orgID))
}

// FunctionHierarchy returns the business function tree
func (c *Client) FunctionHierarchy(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/bcm/functions/").Collection(ctx, "hierarchy", orgQuery(orgID))
}

// ControlsByFramework lists the controls of one compliance framework
func (c *Client) ControlsByFramework(ctx context.Context, frameworkID string) (json.RawMessage, error) {
	var q url.Values
	if frameworkID != "" {
		q = url.Values{"framework": []string{frameworkID}}
	}
	return c.Resource("/compliance/controls/").Collection(ctx, "by_framework", q)
}

// ImplementationStatistics returns control implementation counters
func (c *Client) ImplementationStatistics(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.Resource("/compliance/implementations/").Collection(ctx, "statistics", query)
}

// OpenFindings lists audit findings that are not closed
func (c *Client) OpenFindings(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/compliance/findings/").Collection(ctx, "open_findings", orgQuery(orgID))
}

// EvidenceExpiringSoon lists evidence close to its expiry date
func (c *Client) EvidenceExpiringSoon(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/compliance/evidence/").Collection(ctx, "expiring_soon", orgQuery(orgID))
}

// ExecutiveSummary returns the dashboard summary of an organization
func (c *Client) ExecutiveSummary(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/dashboard/dashboards/").Collection(ctx, "executive_summary", orgQuery(orgID))
}

// MyDashboards lists dashboards of the current user
func (c *Client) MyDashboards(ctx context.Context) (json.RawMessage, error) {
	return c.Resource("/dashboard/dashboards/").Collection(ctx, "my_dashboards", nil)
}

// LatestKPIValues returns the most recent value of every KPI
func (c *Client) LatestKPIValues(ctx context.Context, orgID string) (json.RawMessage, error) {
	return c.Resource("/dashboard/kpi-values/").Collection(ctx, "latest", orgQuery(orgID))
}

// MyTasks lists workflow tasks assigned to the current user
func (c *Client) MyTasks(ctx context.Context) (json.RawMessage, error) {
	return c.Resource("/workflow/tasks/").Collection(ctx, "my_tasks", nil)
}

// StartTask marks a task as in progress
func (c *Client) StartTask(ctx context.Context, id string) (json.RawMessage, error) {
	return c.Resource("/workflow/tasks/").Action(ctx, id, "start", nil)
}

// CompleteTask completes a task with optional notes
func (c *Client) CompleteTask(ctx context.Context, id, notes string) (json.RawMessage, error) {
	return c.Resource("/workflow/tasks/").Action(ctx, id, "complete", map[string]string{"notes": notes})
}

// MyPendingApprovals lists approvals waiting for the current user
func (c *Client) MyPendingApprovals(ctx context.Context) (json.RawMessage, error) {
	return c.Resource("/workflow/approvals/").Collection(ctx, "my_pending", nil)
}

// Approve approves a workflow step
func (c *Client) Approve(ctx context.Context, id, comments string) (json.RawMessage, error) {
	return c.Resource("/workflow/approvals/").Action(ctx, id, "approve", map[string]string{"comments": comments})
}

// Reject rejects a workflow step
func (c *Client) Reject(ctx context.Context, id, comments string) (json.RawMessage, error) {
	return c.Resource("/workflow/approvals/").Action(ctx, id, "reject", map[string]string{"comments": comments})
}

// MyNotifications lists notifications of the current user
func (c *Client) MyNotifications(ctx context.Context, unreadOnly bool) (json.RawMessage, error) {
	var q url.Values
	if unreadOnly {
		q = url.Values{"unread": []string{"true"}}
	}
	return c.Resource("/notifications/notifications/").Collection(ctx, "my_notifications", q)
}

// UnreadCount returns the number of unread notifications
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	data, err := c.Resource("/notifications/notifications/").Collection(ctx, "unread_count", nil)
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkRead marks one notification as read
func (c *Client) MarkRead(ctx context.Context, id string) error {
	_, err := c.Resource("/notifications/notifications/").Action(ctx, id, "mark_read", nil)
	return err
}

// MarkAllRead marks every notification of the current user as read
func (c *Client) MarkAllRead(ctx context.Context) error {
	_, err := c.Resource("/notifications/notifications/").CollectionAction(ctx, "mark_all_read", nil)
	return err
}
